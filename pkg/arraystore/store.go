// Package arraystore provides a reference-counted store for fixed-stride
// byte buffers, deduplicated at chunk granularity.
//
// A Store holds immutable buffer snapshots ("states") for one element
// stride. Buffers are split into fixed-size chunks; when a state is added
// with a reference state, unchanged chunks are shared with the reference
// instead of copied. Consecutive snapshots of a mostly-unchanged buffer
// therefore cost only the chunks that actually differ.
//
// A Store is not safe for concurrent use. Callers that compact states on a
// background worker must establish a barrier before reading or mutating the
// store from another goroutine.
package arraystore

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// DefaultChunkCount is the number of elements per chunk when the caller
// passes a non-positive chunk count to New.
const DefaultChunkCount = 256

// chunk is one reference-counted slice of a stored buffer. Chunks are
// immutable once created and may be shared by any number of states within
// the same store.
type chunk struct {
	data  []byte
	hash  uint64
	users int
}

// State is an opaque handle to one immutable buffer snapshot. It is valid
// until passed to Store.StateRemove.
type State struct {
	store  *Store
	chunks []*chunk
	size   int
}

// Size returns the length in bytes of the stored buffer.
func (st *State) Size() int { return st.size }

// Store holds deduplicated buffer states for a single element stride.
type Store struct {
	stride   int
	chunkLen int // bytes per full chunk

	states        int // live state handles
	liveChunks    int // chunks with at least one user
	expandedSize  int // sum of state sizes, as if nothing were shared
	compactedSize int // bytes actually held by chunks
}

// New creates a store for buffers of the given element stride. chunkCount
// is the number of elements per deduplication chunk; values < 1 fall back
// to DefaultChunkCount.
func New(stride, chunkCount int) *Store {
	if stride < 1 {
		panic(fmt.Sprintf("arraystore: invalid stride %d", stride))
	}
	if chunkCount < 1 {
		chunkCount = DefaultChunkCount
	}
	return &Store{
		stride:   stride,
		chunkLen: stride * chunkCount,
	}
}

// Stride returns the element stride the store was created with.
func (s *Store) Stride() int { return s.stride }

// StateAdd stores a copy of data and returns a handle to it.
//
// When reference is non-nil it must be a state of this same store; chunks
// of data that match the reference's chunk at the same position are shared
// rather than copied. A nil reference always builds a fresh chunk sequence.
// The caller keeps ownership of data; the store never retains it.
func (s *Store) StateAdd(data []byte, reference *State) *State {
	if reference != nil && reference.store != s {
		panic("arraystore: reference state belongs to another store")
	}
	if len(data)%s.stride != 0 {
		panic(fmt.Sprintf("arraystore: buffer length %d not a multiple of stride %d", len(data), s.stride))
	}

	st := &State{store: s, size: len(data)}
	for off, i := 0, 0; off < len(data); off, i = off+s.chunkLen, i+1 {
		end := off + s.chunkLen
		if end > len(data) {
			end = len(data)
		}
		part := data[off:end]
		h := xxhash.Sum64(part)

		if reference != nil && i < len(reference.chunks) {
			ref := reference.chunks[i]
			if len(ref.data) == len(part) && ref.hash == h && bytes.Equal(ref.data, part) {
				ref.users++
				st.chunks = append(st.chunks, ref)
				continue
			}
		}

		c := &chunk{data: append([]byte(nil), part...), hash: h, users: 1}
		s.liveChunks++
		s.compactedSize += len(c.data)
		st.chunks = append(st.chunks, c)
	}

	s.states++
	s.expandedSize += st.size
	return st
}

// StateData returns a freshly allocated copy of the state's buffer. The
// store retains its own representation.
func (s *Store) StateData(st *State) []byte {
	if st.store != s {
		panic("arraystore: state belongs to another store")
	}
	data := make([]byte, 0, st.size)
	for _, c := range st.chunks {
		data = append(data, c.data...)
	}
	return data
}

// StateRemove releases the state's handle. Chunks shared with other states
// stay alive; chunks whose last user goes away are freed.
func (s *Store) StateRemove(st *State) {
	if st.store != s {
		panic("arraystore: state belongs to another store")
	}
	for _, c := range st.chunks {
		c.users--
		if c.users == 0 {
			s.liveChunks--
			s.compactedSize -= len(c.data)
			c.data = nil
		} else if c.users < 0 {
			panic("arraystore: chunk reference count below zero")
		}
	}
	s.expandedSize -= st.size
	s.states--
	st.chunks = nil
	st.store = nil
}

// ChunkCount returns the number of live deduplicated chunks. Shared chunks
// count once.
func (s *Store) ChunkCount() int { return s.liveChunks }

// StateCount returns the number of live state handles.
func (s *Store) StateCount() int { return s.states }

// MemoryUsage reports the total stored bytes as if nothing were shared
// (expanded) and the bytes actually held by chunks (compacted).
func (s *Store) MemoryUsage() (expanded, compacted int) {
	return s.expandedSize, s.compactedSize
}
