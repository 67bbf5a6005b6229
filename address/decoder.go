// Package address splits linear byte addresses into tag, set index and block
// offset for a given cache geometry.
package address

// Decomposition is the result of decoding an address.
type Decomposition struct {
	Tag      int64
	SetIndex int
	Offset   int
}

// Decoder decodes addresses for one cache geometry. The geometry is fixed at
// construction; a reconfigured cache gets a new Decoder.
//
// Decoding uses division and modulo rather than bit masks, so block sizes and
// set counts do not need to be powers of two.
type Decoder struct {
	blockSize uint64
	numSets   uint64
}

// NewDecoder creates a decoder. Both blockSize and numSets must be positive;
// the caller is responsible for validating the geometry.
func NewDecoder(blockSize, numSets int) Decoder {
	return Decoder{
		blockSize: uint64(blockSize),
		numSets:   uint64(numSets),
	}
}

// BlockSize returns the block size in bytes.
func (d Decoder) BlockSize() int {
	return int(d.blockSize)
}

// NumSets returns the number of sets.
func (d Decoder) NumSets() int {
	return int(d.numSets)
}

// Decode splits addr into its tag, set index and offset.
func (d Decoder) Decode(addr uint64) Decomposition {
	blockNumber := addr / d.blockSize

	return Decomposition{
		Tag:      int64(blockNumber / d.numSets),
		SetIndex: int(blockNumber % d.numSets),
		Offset:   int(addr % d.blockSize),
	}
}

// Tag returns only the tag part of addr.
func (d Decoder) Tag(addr uint64) int64 {
	return int64(addr / d.blockSize / d.numSets)
}

// SetIndex returns only the set index part of addr.
func (d Decoder) SetIndex(addr uint64) int {
	return int(addr / d.blockSize % d.numSets)
}

// Offset returns only the offset part of addr.
func (d Decoder) Offset(addr uint64) int {
	return int(addr % d.blockSize)
}

// Compose rebuilds the address from a decomposition.
func (d Decoder) Compose(dc Decomposition) uint64 {
	return MemoryAddress(dc.Tag, dc.SetIndex, dc.Offset, d.NumSets(), d.BlockSize())
}

// BlockBase returns the address of the first byte of the block that holds
// tag in set setIndex.
func (d Decoder) BlockBase(tag int64, setIndex int) uint64 {
	return MemoryAddress(tag, setIndex, 0, d.NumSets(), d.BlockSize())
}

// MemoryAddress maps a (tag, set, byte offset) triple back to the main memory
// address it caches. Eviction write-back, flush and block fills all locate
// memory through this function.
func MemoryAddress(tag int64, setIndex, offset, numSets, blockSize int) uint64 {
	block := uint64(tag)*uint64(numSets) + uint64(setIndex)
	return block*uint64(blockSize) + uint64(offset)
}
