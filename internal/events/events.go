// Package events carries diagnostics out of the physics core.
//
// The core never writes logs itself. Every noteworthy occurrence (a grain
// rejected at capacity, a degenerate contact, a reset) is described by an
// [Event] and handed to an [Observer]. Front ends decide what to do with
// them: keep them in a bounded [Log], forward them to a logger with
// [NewLogObserver], or drop them with [Discard].
package events

import (
	"fmt"
	"sync"

	"github.com/san-kum/granular/internal/geom"
)

type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

type Kind string

const (
	GrainCreated     Kind = "grain_created"
	CapacityExceeded Kind = "capacity_exceeded"
	SegmentCreated   Kind = "segment_created"
	GrainCulled      Kind = "grain_culled"
	Degenerate       Kind = "degenerate"
	Reset            Kind = "reset"
	Emitted          Kind = "emitted"
)

// Event is a single diagnostic record. Pos and B are only meaningful for
// kinds that carry geometry; Count for batched kinds.
type Event struct {
	Kind    Kind
	Level   Level
	Message string
	Pos     geom.Vec2
	B       geom.Vec2
	Count   int
}

type Observer interface {
	OnEvent(e Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Discard drops every event.
var Discard Observer = ObserverFunc(func(Event) {})

// Multi fans an event out to several observers in order.
type Multi []Observer

func (m Multi) OnEvent(e Event) {
	for _, o := range m {
		o.OnEvent(e)
	}
}

// Log is a bounded, concurrency safe event ring with per-kind counters.
// Counters keep counting after old events are overwritten.
type Log struct {
	mu     sync.Mutex
	buf    []Event
	next   int
	full   bool
	counts map[Kind]int
	min    Level
}

// NewLog keeps the last capacity events at or above min.
func NewLog(capacity int, min Level) *Log {
	if capacity < 1 {
		capacity = 1
	}
	return &Log{
		buf:    make([]Event, capacity),
		counts: make(map[Kind]int),
		min:    min,
	}
}

func (l *Log) OnEvent(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[e.Kind]++
	if e.Level < l.min {
		return
	}
	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
}

// Events returns retained events oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		out := make([]Event, l.next)
		copy(out, l.buf[:l.next])
		return out
	}
	out := make([]Event, 0, len(l.buf))
	out = append(out, l.buf[l.next:]...)
	return append(out, l.buf[:l.next]...)
}

func (l *Log) Count(k Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[k]
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next, l.full = 0, false
	clear(l.counts)
}
