package meshundo

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkrider/meshundo/pkg/arraystore"
	"github.com/dkrider/meshundo/pkg/mesh"
)

// Options configures a Service.
type Options struct {
	// ChunkCount is the number of elements per deduplication chunk;
	// values < 1 use arraystore.DefaultChunkCount.
	ChunkCount int

	// Background offloads snapshot compaction to a worker goroutine. Any
	// later operation that reads snapshot state drains the queue first.
	Background bool

	// Logger receives the decode inconsistency errors and compaction
	// statistics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Service owns the shared undo-store state: the per-stride content stores,
// the chronological snapshot chain, the snapshot user count, and the
// optional background compaction worker.
//
// One Service serves every simultaneously edited object. Apart from the
// worker queue it is not safe for concurrent use: all calls come from the
// host's undo control flow, and reads of store contents are ordered after
// queued compactions by the drain barrier.
type Service struct {
	opts Options
	log  *slog.Logger

	stores arraystore.StrideMap

	// users counts compacted snapshots. Stores and worker are torn down
	// when it returns to zero.
	users int

	// Chronological chain of live snapshots, oldest first. Used to find
	// the most recent snapshot of a mesh as the deduplication reference.
	chainFirst, chainLast *Snapshot

	pool *workerPool
}

// NewService creates an empty service. Stores are created lazily on first
// compaction.
func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		opts:   opts,
		log:    log,
		stores: *arraystore.NewStrideMap(opts.ChunkCount),
	}
}

// Users returns the number of compacted snapshots currently holding store
// references.
func (s *Service) Users() int { return s.users }

// Stats reports aggregate store usage.
type Stats struct {
	// ExpandedSize is the total snapshot payload as if nothing were
	// deduplicated; CompactedSize is the memory actually held.
	ExpandedSize  int
	CompactedSize int

	// Stores is the number of distinct element strides seen.
	Stores int
}

// Stats drains pending compactions and reports current store usage.
func (s *Service) Stats() Stats {
	s.barrier()
	expanded, compacted := s.stores.MemoryUsage()
	return Stats{ExpandedSize: expanded, CompactedSize: compacted, Stores: s.stores.Len()}
}

// barrier waits for all queued compaction work. Establishes the
// happens-before edge every state-reading operation relies on.
func (s *Service) barrier() {
	if s.pool != nil {
		s.pool.Wait()
	}
}

// FindReferences returns, per object, the most recent snapshot of the
// object's mesh, walking the chronological chain newest to oldest. Objects
// whose mesh never appears get a nil entry. When no object matches at all
// the result is nil rather than a slice of nils, so callers can tell
// "nothing to deduplicate against" apart from a partial result.
func (s *Service) FindReferences(objects []*mesh.Object) []*Snapshot {
	refs := make([]*Snapshot, len(objects))
	slots := make(map[uuid.UUID]int, len(objects))
	for i, ob := range objects {
		slots[ob.Mesh.Session] = i
	}

	matched := 0
	for it := s.chainLast; it != nil && len(slots) > 0; it = it.chainPrev {
		if i, ok := slots[it.Mesh.Session]; ok {
			refs[i] = it
			delete(slots, it.Mesh.Session)
			matched++
		}
	}

	if matched == 0 {
		return nil
	}
	return refs
}

// Capture snapshots the object's working copy and schedules compaction
// against the given reference snapshot (nil forces a full copy). The
// returned snapshot is linked into the chronological chain; its live
// buffers are released once compaction runs.
func (s *Service) Capture(ob *mesh.Object, ref *Snapshot) *Snapshot {
	// The queue rarely holds work at this point, but any in-flight
	// compaction must finish before its output can serve as a reference.
	s.barrier()

	em := ob.Mesh.Edit

	snap := &Snapshot{
		Mesh:       *mesh.FromEdit(em),
		SelectMode: em.SelectMode,
		Shapenr:    em.Shapenr,
	}
	snap.Mesh.Session = ob.Mesh.Session
	snap.Mesh.Name = ob.Mesh.Name
	snap.UndoSize = snap.Mesh.DataSize()

	s.chainPush(snap)

	if s.opts.Background {
		if s.pool == nil {
			s.pool = newWorkerPool()
		}
		s.pool.Push(func() { s.compactWithStats(snap, ref) })
	} else {
		s.compactWithStats(snap, ref)
	}

	return snap
}

// Compact converts the snapshot's buffers into content states deduplicated
// against ref. Compacting an already-compacted snapshot is a no-op, so a
// transient expand/clear cycle can never double-count store users.
func (s *Service) Compact(snap *Snapshot, ref *Snapshot) {
	if snap.compacted {
		return
	}
	s.compactEx(snap, ref, true)
	snap.compacted = true
}

// compactWithStats compacts and logs the deduplication ratio of the step.
func (s *Service) compactWithStats(snap *Snapshot, ref *Snapshot) {
	expandedPrev, compactedPrev := s.stores.MemoryUsage()

	s.Compact(snap, ref)

	if s.log.Enabled(context.Background(), slog.LevelDebug) {
		expanded, compacted := s.stores.MemoryUsage()
		s.log.Debug("mesh undo compacted",
			"mesh", snap.Mesh.Name,
			"overall_pct", usagePercent(expanded, compacted),
			"step_pct", usagePercent(expanded-expandedPrev, compacted-compactedPrev),
		)
	}
}

func usagePercent(expanded, compacted int) float64 {
	if expanded == 0 {
		return -1
	}
	return float64(compacted) / float64(expanded) * 100
}

// Expand drains pending compactions and re-materializes the snapshot's
// buffers for read access. The content states stay held.
func (s *Service) Expand(snap *Snapshot) {
	s.barrier()
	s.expandSnapshot(snap)
}

// ExpandClear releases buffers that were expanded for transient read
// access, leaving the stored states untouched.
func (s *Service) ExpandClear(snap *Snapshot) {
	s.compactEx(snap, nil, false)
}

// Free releases the snapshot: it is expanded one final time so the mesh
// data tear-down owns plain buffers again, unlinked from the chronological
// chain, and every content state handle is returned to the store. When the
// last snapshot goes away the stores and the worker are torn down.
func (s *Service) Free(snap *Snapshot) {
	s.barrier()

	s.expandSnapshot(snap)

	s.chainRemove(snap)
	s.freeSnapshotStore(snap)
	snap.compacted = false

	s.users--
	if s.users < 0 {
		panic("meshundo: snapshot user count below zero")
	}
	if s.users == 0 {
		s.log.Debug("mesh undo store: freeing all data")
		s.stores.Clear()
		if s.pool != nil {
			s.pool.Stop()
			s.pool = nil
		}
	}
}

func (s *Service) chainPush(snap *Snapshot) {
	snap.chainPrev = s.chainLast
	if s.chainLast != nil {
		s.chainLast.chainNext = snap
	}
	s.chainLast = snap
	if s.chainFirst == nil {
		s.chainFirst = snap
	}
}

func (s *Service) chainRemove(snap *Snapshot) {
	if snap.chainPrev != nil {
		snap.chainPrev.chainNext = snap.chainNext
	}
	if snap.chainNext != nil {
		snap.chainNext.chainPrev = snap.chainPrev
	}
	if s.chainFirst == snap {
		s.chainFirst = snap.chainNext
	}
	if s.chainLast == snap {
		s.chainLast = snap.chainPrev
	}
	snap.chainPrev, snap.chainNext = nil, nil
}
