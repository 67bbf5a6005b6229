package cache

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads  uint64 `json:"reads"`
	Writes uint64 `json:"writes"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	// Evictions counts dirty victims written back during allocation.
	Evictions uint64 `json:"evictions"`
	// Writebacks counts blocks written back by eviction or flush.
	Writebacks uint64 `json:"writebacks"`
}

// RecordRead counts a read and its outcome.
func (s *Statistics) RecordRead(hit bool) {
	s.Reads++
	s.record(hit)
}

// RecordWrite counts a write and its outcome.
func (s *Statistics) RecordWrite(hit bool) {
	s.Writes++
	s.record(hit)
}

func (s *Statistics) record(hit bool) {
	if hit {
		s.Hits++
	} else {
		s.Misses++
	}
}

// RecordEviction counts a dirty block written back on replacement.
func (s *Statistics) RecordEviction() {
	s.Evictions++
	s.Writebacks++
}

// RecordWriteback counts a block written back by a flush.
func (s *Statistics) RecordWriteback() {
	s.Writebacks++
}

// Accesses returns the number of reads and writes.
func (s Statistics) Accesses() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns hits / (hits + misses), or 0 before the first access.
func (s Statistics) HitRate() float64 {
	if s.Accesses() == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(s.Accesses())
}

// MissRate returns misses / (hits + misses), or 0 before the first access.
func (s Statistics) MissRate() float64 {
	if s.Accesses() == 0 {
		return 0.0
	}

	return float64(s.Misses) / float64(s.Accesses())
}
