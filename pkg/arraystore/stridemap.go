package arraystore

// StrideMap lazily creates and tracks one Store per element stride. The
// zero value is ready to use.
type StrideMap struct {
	stores     map[int]*Store
	chunkCount int
}

// NewStrideMap returns a StrideMap whose stores use the given chunk count
// (elements per chunk); values < 1 fall back to DefaultChunkCount.
func NewStrideMap(chunkCount int) *StrideMap {
	return &StrideMap{chunkCount: chunkCount}
}

// Ensure returns the store for the given stride, creating it on first use.
func (m *StrideMap) Ensure(stride int) *Store {
	if s, ok := m.stores[stride]; ok {
		return s
	}
	if m.stores == nil {
		m.stores = make(map[int]*Store)
	}
	s := New(stride, m.chunkCount)
	m.stores[stride] = s
	return s
}

// Get returns the store for the given stride. Looking up a stride no state
// was ever added at is a programming error.
func (m *StrideMap) Get(stride int) *Store {
	s, ok := m.stores[stride]
	if !ok {
		panic("arraystore: no store for stride")
	}
	return s
}

// Len returns the number of stores created so far.
func (m *StrideMap) Len() int { return len(m.stores) }

// Clear drops all stores. Any outstanding State handles are invalidated.
func (m *StrideMap) Clear() {
	m.stores = nil
}

// MemoryUsage sums MemoryUsage over all stores.
func (m *StrideMap) MemoryUsage() (expanded, compacted int) {
	for _, s := range m.stores {
		e, c := s.MemoryUsage()
		expanded += e
		compacted += c
	}
	return expanded, compacted
}
