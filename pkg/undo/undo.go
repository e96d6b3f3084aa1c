// Package undo defines the contract between the host's undo stack and the
// per-editor step implementations: the context interface the host provides
// and the callback set a step type registers.
package undo

import "github.com/dkrider/meshundo/pkg/mesh"

// Direction of a step application relative to the timeline.
type Direction int

const (
	// DirectionUndo applies the step walking back in time.
	DirectionUndo Direction = -1
	// DirectionRedo applies the step walking forward.
	DirectionRedo Direction = 1
)

// Step is the bookkeeping record the host stack keeps per step. Concrete
// step payloads embed it.
type Step struct {
	Name string

	// DataSize accumulates the approximate memory the step pins; the host
	// uses it to enforce undo memory limits.
	DataSize int
}

// Context is the host surface the step callbacks run against. The host
// application implements it; tests use a fake.
type Context interface {
	// EditObjects returns every object currently in the edit workflow, the
	// active object first.
	EditObjects() []*mesh.Object

	// ActiveEditObject returns the active object when it is a mesh in edit
	// mode, nil otherwise.
	ActiveEditObject() *mesh.Object

	// RestoreEditObjects brings exactly the given objects (back) into the
	// edit workflow before a step is decoded.
	RestoreEditObjects(objects []*mesh.Object)

	// Activate makes the object the active one.
	Activate(ob *mesh.Object)

	// ToolSettings returns the scene tool settings, writable.
	ToolSettings() *mesh.ToolSettings

	// NotifyGeometryChanged emits the geometry-data-changed event to
	// observers.
	NotifyGeometryChanged()

	// RequireFlush marks the host's persistence layer as needing a flush
	// of undo-related state.
	RequireFlush()
}

// StepData is one undo step's payload. Encode is called once when the step
// is captured, Decode any number of times in either direction, Free exactly
// once when the step leaves the stack.
type StepData interface {
	Encode(ctx Context) bool
	Decode(ctx Context, dir Direction, isFinal bool)
	Free()

	// ForEachRef enumerates the external objects the step references so
	// the host can remap or validate them.
	ForEachRef(fn func(ob *mesh.Object))
}

// Type registers one step implementation with the host stack.
type Type struct {
	Name string

	// Poll reports whether a step of this type can be captured now.
	Poll func(ctx Context) bool

	// New creates an empty step payload for Encode.
	New func(name string) StepData

	// NeedsContext is set when Encode cannot run without a host context.
	NeedsContext bool
}
