// Package mode holds the session-wide application mode toggle.
package mode

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Mode is the application mode.
type Mode int32

const (
	// IDE treats input as literal SQL.
	IDE Mode = iota
	// Simple treats input as a natural-language question.
	Simple
)

func (m Mode) String() string {
	if m == Simple {
		return "simple"
	}
	return "ide"
}

// Parse converts "ide" or "simple" into a Mode.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ide":
		return IDE, nil
	case "simple":
		return Simple, nil
	}
	return IDE, fmt.Errorf("unknown mode %q", s)
}

// Toggle is a process-local mode switch. It is never persisted.
type Toggle struct {
	v atomic.Int32
}

// NewToggle starts in the given mode.
func NewToggle(initial Mode) *Toggle {
	t := &Toggle{}
	t.v.Store(int32(initial))
	return t
}

// Toggle flips between IDE and Simple and returns the new mode.
func (t *Toggle) Toggle() Mode {
	for {
		old := t.v.Load()
		next := int32(IDE)
		if Mode(old) == IDE {
			next = int32(Simple)
		}
		if t.v.CompareAndSwap(old, next) {
			return Mode(next)
		}
	}
}

// Current returns the current mode.
func (t *Toggle) Current() Mode {
	return Mode(t.v.Load())
}

// IsIDE reports whether the IDE mode is active.
func (t *Toggle) IsIDE() bool {
	return t.Current() == IDE
}
