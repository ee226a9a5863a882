// Package history implements the time-travel debugger: a bounded,
// navigable log of (state, message, timestamp) entries with a movable
// cursor.
//
// The log keeps one linear timeline at all times. Rewinding pauses
// recording so a live dispatch stream cannot silently overwrite the
// "future" entries being inspected; resuming - or recording after a
// rewind - truncates everything after the cursor and continues from
// there.
//
// A Debugger is owned by a single component instance and follows its
// single-logical-owner discipline; it is not safe for concurrent use.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrOutOfRange is returned by GoTo when the index is outside the log.
var ErrOutOfRange = errors.New("history: index out of range")

// DefaultMaxEntries bounds the log when no explicit capacity is given.
const DefaultMaxEntries = 100

// Entry is one recorded state. Msg is the message whose dispatch produced
// the state, nil for the initial entry.
type Entry[TModel, TMsg any] struct {
	State     TModel    `json:"state"`
	Msg       *TMsg     `json:"msg,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Debugger is the history log plus cursor. The cursor always points at a
// valid entry once the first state is recorded; before that it is -1.
type Debugger[TModel, TMsg any] struct {
	entries []Entry[TModel, TMsg]
	cursor  int
	paused  bool
	max     int
	now     func() time.Time
}

// New creates a debugger bounded to maxEntries. A non-positive bound falls
// back to DefaultMaxEntries.
func New[TModel, TMsg any](maxEntries int) *Debugger[TModel, TMsg] {
	return NewWithClock[TModel, TMsg](maxEntries, time.Now)
}

// NewWithClock creates a debugger with an explicit timestamp source.
// Used by tests that need deterministic entry timestamps.
func NewWithClock[TModel, TMsg any](maxEntries int, now func() time.Time) *Debugger[TModel, TMsg] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if now == nil {
		now = time.Now
	}
	return &Debugger[TModel, TMsg]{cursor: -1, max: maxEntries, now: now}
}

// RecordInitial resets the log to a single entry holding state, cursor at
// 0, unpaused.
func (d *Debugger[TModel, TMsg]) RecordInitial(state TModel) {
	d.entries = []Entry[TModel, TMsg]{{State: state, Timestamp: d.now()}}
	d.cursor = 0
	d.paused = false
}

// Record appends a new entry and moves the cursor to it. Returns false
// without recording while paused.
//
// If the cursor is not at the end (the log was rewound and then unpaused
// through Resume), every entry after the cursor is discarded first. When
// the capacity bound is exceeded, entries are dropped from the oldest end.
// The cursor always lands on the newly recorded entry.
func (d *Debugger[TModel, TMsg]) Record(state TModel, msg *TMsg) bool {
	if d.paused {
		return false
	}

	d.truncateForward()
	d.entries = append(d.entries, Entry[TModel, TMsg]{State: state, Msg: msg, Timestamp: d.now()})

	if drop := len(d.entries) - d.max; drop > 0 {
		d.entries = d.entries[drop:]
	}
	d.cursor = len(d.entries) - 1
	return true
}

// GoBack moves the cursor one entry back and pauses recording.
// Returns false at the oldest entry.
func (d *Debugger[TModel, TMsg]) GoBack() bool {
	if d.cursor <= 0 {
		return false
	}
	d.cursor--
	d.paused = true
	return true
}

// GoForward moves the cursor one entry forward; reaching the last entry
// unpauses recording. Returns false at the newest entry.
func (d *Debugger[TModel, TMsg]) GoForward() bool {
	if d.cursor >= len(d.entries)-1 {
		return false
	}
	d.cursor++
	if d.cursor == len(d.entries)-1 {
		d.paused = false
	}
	return true
}

// GoTo jumps the cursor directly to index. Recording pauses unless the
// jump lands exactly on the last entry.
func (d *Debugger[TModel, TMsg]) GoTo(index int) error {
	if index < 0 || index >= len(d.entries) {
		return fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, index, len(d.entries))
	}
	d.cursor = index
	d.paused = index != len(d.entries)-1
	return nil
}

// Resume discards every entry after the cursor and unpauses. The entry at
// the cursor becomes the live tip of the timeline. No-op when not paused.
func (d *Debugger[TModel, TMsg]) Resume() {
	if !d.paused {
		return
	}
	d.truncateForward()
	d.paused = false
}

// Reset is equivalent to RecordInitial.
func (d *Debugger[TModel, TMsg]) Reset(state TModel) {
	d.RecordInitial(state)
}

// Current returns the entry at the cursor. Only valid once a state has
// been recorded (Len > 0).
func (d *Debugger[TModel, TMsg]) Current() Entry[TModel, TMsg] {
	return d.entries[d.cursor]
}

// Entries returns a copy of the log, oldest first.
func (d *Debugger[TModel, TMsg]) Entries() []Entry[TModel, TMsg] {
	out := make([]Entry[TModel, TMsg], len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of recorded entries.
func (d *Debugger[TModel, TMsg]) Len() int { return len(d.entries) }

// Cursor returns the current cursor index, -1 before the first record.
func (d *Debugger[TModel, TMsg]) Cursor() int { return d.cursor }

// Paused reports whether recording is paused.
func (d *Debugger[TModel, TMsg]) Paused() bool { return d.paused }

// Export serializes the full entry list as JSON.
func (d *Debugger[TModel, TMsg]) Export() ([]byte, error) {
	data, err := json.Marshal(d.entries)
	if err != nil {
		return nil, fmt.Errorf("export history: %w", err)
	}
	return data, nil
}

// Import replaces the log with entries parsed from data, sets the cursor
// to the last entry, and unpauses. An empty list is rejected: the debugger
// always holds at least one entry once initialized.
func (d *Debugger[TModel, TMsg]) Import(data []byte) error {
	var entries []Entry[TModel, TMsg]
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("import history: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("import history: empty entry list")
	}
	if drop := len(entries) - d.max; drop > 0 {
		entries = entries[drop:]
	}
	d.entries = entries
	d.cursor = len(entries) - 1
	d.paused = false
	return nil
}

func (d *Debugger[TModel, TMsg]) truncateForward() {
	if d.cursor < len(d.entries)-1 {
		d.entries = d.entries[:d.cursor+1]
	}
}
