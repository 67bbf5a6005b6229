package cache

// BackingStore is the memory below the cache.
type BackingStore interface {
	// Read fetches size bytes starting at addr.
	Read(addr uint64, size int) []byte
	// Write stores data starting at addr.
	Write(addr uint64, data []byte)
}
