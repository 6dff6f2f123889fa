package store

import (
	"context"
	"strings"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// frame is one level of nested initialization.
type frame struct {
	segment string
	// ctx is the observer context of the initialization, handed to nested
	// initializations as their parent context.
	ctx context.Context
	// owner is the scope the initialization runs in.
	owner *reactive.Owner
}

// Stack tracks nested store initializations. It is not safe for concurrent
// use; a Runtime keeps one Stack per goroutine.
type Stack struct {
	frames []frame
}

// Push adds a segment for a new, nested initialization.
func (s *Stack) Push(segment string) {
	s.frames = append(s.frames, frame{segment: segment})
}

// Pop removes the innermost segment. Popping an empty stack is a no-op.
func (s *Stack) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Identifier returns all segments joined with '/'.
func (s *Stack) Identifier() string {
	parts := make([]string, len(s.frames))
	for i, f := range s.frames {
		parts[i] = f.segment
	}
	return strings.Join(parts, "/")
}

// Depth returns the number of initializations in progress.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// parentContext returns the observer context of the innermost enclosing
// initialization, excluding the top frame.
func (s *Stack) parentContext() context.Context {
	for i := len(s.frames) - 2; i >= 0; i-- {
		if s.frames[i].ctx != nil {
			return s.frames[i].ctx
		}
	}
	return context.Background()
}

// enclosingOwner returns the owner of the innermost enclosing
// initialization, excluding the top frame.
func (s *Stack) enclosingOwner() *reactive.Owner {
	for i := len(s.frames) - 2; i >= 0; i-- {
		if s.frames[i].owner != nil {
			return s.frames[i].owner
		}
	}
	return nil
}

func (s *Stack) setTop(ctx context.Context, owner *reactive.Owner) {
	if len(s.frames) > 0 {
		top := &s.frames[len(s.frames)-1]
		top.ctx = ctx
		top.owner = owner
	}
}

// segmentFor returns name, or name/id when id is not empty.
func segmentFor(name, id string) string {
	if id == "" {
		return name
	}
	return name + "/" + id
}
