package meshundo

import (
	"github.com/dkrider/meshundo/pkg/mesh"
	"github.com/dkrider/meshundo/pkg/undo"
)

// stepElem pairs one edited object with its captured snapshot.
type stepElem struct {
	obj  *mesh.Object
	data *Snapshot
}

// Step is the edit-mesh undo step payload: one snapshot per object that
// was in the edit workflow when the step was encoded.
type Step struct {
	undo.Step

	svc   *Service
	elems []stepElem
}

// NewStep returns an empty step bound to the service.
func NewStep(svc *Service, name string) *Step {
	return &Step{Step: undo.Step{Name: name}, svc: svc}
}

// Poll reports whether an edit-mesh step can be captured: the active
// object must be a mesh in edit mode.
func Poll(ctx undo.Context) bool {
	return ctx.ActiveEditObject() != nil
}

// Encode captures every object currently in the edit workflow. Reference
// snapshots are resolved first so unchanged buffer regions deduplicate
// against the previous step.
func (st *Step) Encode(ctx undo.Context) bool {
	objects := ctx.EditObjects()
	ts := ctx.ToolSettings()

	st.elems = make([]stepElem, 0, len(objects))

	refs := st.svc.FindReferences(objects)

	for i, ob := range objects {
		var ref *Snapshot
		if refs != nil {
			ref = refs[i]
		}

		snap := st.svc.Capture(ob, ref)
		snap.UVSelectMode = ts.UVSelectMode
		ob.Mesh.Edit.NeedsFlush = true

		st.DataSize += snap.UndoSize
		st.elems = append(st.elems, stepElem{obj: ob, data: snap})
	}

	ctx.RequireFlush()
	return true
}

// Decode restores every element's snapshot into a fresh working copy. An
// object that failed to re-enter edit mode is logged and skipped; the rest
// of the step still applies.
func (st *Step) Decode(ctx undo.Context, dir undo.Direction, isFinal bool) {
	if len(st.elems) == 0 {
		return
	}

	objects := make([]*mesh.Object, len(st.elems))
	for i, elem := range st.elems {
		objects[i] = elem.obj
	}
	ctx.RestoreEditObjects(objects)

	for _, elem := range st.elems {
		ob := elem.obj
		if ob.Mesh.Edit == nil {
			// Should never fail; carrying on with the other elements
			// beats aborting the whole step.
			st.svc.log.Error("failed to enter edit-mode for object, undo state invalid",
				"step", st.Name, "object", ob.Name)
			continue
		}
		st.restoreElem(elem)
	}

	// The first element is always active.
	ctx.Activate(st.elems[0].obj)

	ts := ctx.ToolSettings()
	ts.SelectMode = st.elems[0].data.SelectMode
	ts.UVSelectMode = st.elems[0].data.UVSelectMode

	ctx.RequireFlush()
	ctx.NotifyGeometryChanged()
}

// restoreElem expands the snapshot, rebuilds the object's working copy
// from it, and releases the transient buffers again.
func (st *Step) restoreElem(elem stepElem) {
	snap := elem.data
	ob := elem.obj

	st.svc.Expand(snap)

	em := snap.Mesh.NewEdit()
	em.SelectMode = snap.SelectMode
	em.Shapenr = snap.Shapenr
	em.NeedsFlush = true
	ob.Mesh.Edit = em
	ob.Shapenr = snap.Shapenr

	st.svc.ExpandClear(snap)
}

// Free releases every element's snapshot. Called exactly once when the
// step leaves the undo stack.
func (st *Step) Free() {
	for _, elem := range st.elems {
		st.svc.Free(elem.data)
	}
	st.elems = nil
}

// ForEachRef enumerates the objects the step references.
func (st *Step) ForEachRef(fn func(ob *mesh.Object)) {
	for _, elem := range st.elems {
		fn(elem.obj)
	}
}

// StepType wires the edit-mesh callbacks for registration with the host
// undo stack.
func StepType(svc *Service) undo.Type {
	return undo.Type{
		Name:         "Edit Mesh",
		Poll:         Poll,
		New:          func(name string) undo.StepData { return NewStep(svc, name) },
		NeedsContext: true,
	}
}
