package cache

// NoTag is the tag of a block that has never held data.
const NoTag int64 = -1

// A Block is one way of a set. Blocks are reused in place when they are
// replaced; their position in the set is their identity.
type Block struct {
	Tag   int64
	Data  []byte
	Valid bool
	Dirty bool
}

func newBlock(blockSize int) Block {
	return Block{
		Tag:  NoTag,
		Data: make([]byte, blockSize),
	}
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() Block {
	data := make([]byte, len(b.Data))
	copy(data, b.Data)

	return Block{
		Tag:   b.Tag,
		Data:  data,
		Valid: b.Valid,
		Dirty: b.Dirty,
	}
}
