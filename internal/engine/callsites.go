// Package engine implements the stateful recording engine that drives
// a live chunked recording: callsite registration, per-sequence
// buffers with object-closure resolution, interval rotation, and the
// flusher that writes completed chunks to internal/chunked's
// container format.
package engine

import (
	"sync"
	"sync/atomic"

	"rfr/internal/chunked"
	"rfr/internal/schema"
)

// CallsiteRegistry assigns CallsiteIds and forwards newly registered
// callsites to the recording's callsites.rfr writer, rejecting
// duplicates by id the same way chunked.CallsitesWriter does.
type CallsiteRegistry struct {
	next   atomic.Uint64
	mu     sync.Mutex
	writer *chunked.CallsitesWriter
}

// NewCallsiteRegistry wraps writer; ids are assigned starting at 1 (0
// is reserved as the zero value / "unset").
func NewCallsiteRegistry(writer *chunked.CallsitesWriter) *CallsiteRegistry {
	reg := &CallsiteRegistry{writer: writer}
	reg.next.Store(1)
	return reg
}

// Register assigns a fresh CallsiteId to the given level/kind/fields
// and stages it for the next flush. It always succeeds (ids are
// allocated fresh, so they are never duplicates).
func (reg *CallsiteRegistry) Register(level schema.Level, kind schema.Kind, constFields []schema.Field, constFieldNames []schema.FieldName) schema.Callsite {
	id := schema.CallsiteId(reg.next.Add(1) - 1)
	c := schema.Callsite{
		CallsiteId:      id,
		Level:           level,
		Kind:            kind,
		ConstFields:     constFields,
		ConstFieldNames: constFieldNames,
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.writer.PushCallsite(c)
	return c
}

// Flush writes any staged callsites to the underlying callsites file.
func (reg *CallsiteRegistry) Flush() error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.writer.Flush()
}
