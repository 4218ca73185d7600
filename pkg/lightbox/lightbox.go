// Package lightbox implements the navigation state of a media gallery: which
// item is shown and whether the overlay is open.
//
// A Lightbox is owned by a single caller and is not safe for concurrent use.
// Every transition is synchronous.
package lightbox

import (
	"errors"
	"fmt"

	"dpformance-site/pkg/models"
)

// ErrIndexOutOfRange is returned by JumpTo for an index outside the item list
var ErrIndexOutOfRange = errors.New("index out of range")

// State is the visibility of the overlay
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Keys understood by HandleKey
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Lightbox tracks the current item of an ordered media list.
// Invariant: 0 <= index < len(items) whenever items is non-empty, and the
// state is Closed whenever items is empty.
type Lightbox struct {
	items []models.MediaItem
	index int
	state State
}

// New creates a closed lightbox over items
func New(items []models.MediaItem) *Lightbox {
	lb := &Lightbox{}
	lb.SetItems(items)
	return lb
}

// Items returns the current item list
func (lb *Lightbox) Items() []models.MediaItem {
	return lb.items
}

// Len returns the number of items
func (lb *Lightbox) Len() int {
	return len(lb.items)
}

// Index returns the current index. It is 0 for an empty list.
func (lb *Lightbox) Index() int {
	return lb.index
}

// State returns whether the overlay is open
func (lb *Lightbox) State() State {
	return lb.state
}

// IsOpen reports whether the overlay should be rendered
func (lb *Lightbox) IsOpen() bool {
	return lb.state == Open
}

// Current returns the item at the current index. ok is false for an empty list.
func (lb *Lightbox) Current() (item models.MediaItem, ok bool) {
	if len(lb.items) == 0 {
		return models.MediaItem{}, false
	}
	return lb.items[lb.index], true
}

// SetItems replaces the item list wholesale. The index is clamped into the
// new range and an empty list closes the overlay.
func (lb *Lightbox) SetItems(items []models.MediaItem) {
	lb.items = items
	if len(items) == 0 {
		lb.index = 0
		lb.state = Closed
		return
	}
	lb.index = clamp(lb.index, len(items))
}

// OpenAt opens the overlay at i, clamped into range. With no items the
// lightbox stays closed.
func (lb *Lightbox) OpenAt(i int) {
	if len(lb.items) == 0 {
		return
	}
	lb.index = clamp(i, len(lb.items))
	lb.state = Open
}

// Close hides the overlay. The index is kept.
func (lb *Lightbox) Close() {
	lb.state = Closed
}

// Next advances to the following item, wrapping to the first
func (lb *Lightbox) Next() {
	if !lb.IsOpen() {
		return
	}
	lb.index = (lb.index + 1) % len(lb.items)
}

// Previous moves to the preceding item, wrapping to the last
func (lb *Lightbox) Previous() {
	if !lb.IsOpen() {
		return
	}
	n := len(lb.items)
	lb.index = (lb.index - 1 + n) % n
}

// JumpTo shows item i. It fails without changing state unless the overlay is
// open and 0 <= i < Len().
func (lb *Lightbox) JumpTo(i int) error {
	if !lb.IsOpen() {
		return fmt.Errorf("jump to %d: lightbox is closed", i)
	}
	if i < 0 || i >= len(lb.items) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(lb.items))
	}
	lb.index = i
	return nil
}

// HandleKey applies a keyboard event. Escape closes, the arrow keys
// navigate, everything else is ignored. Keys are ignored while closed.
func (lb *Lightbox) HandleKey(key string) {
	if !lb.IsOpen() {
		return
	}
	switch key {
	case KeyEscape:
		lb.Close()
	case KeyArrowRight:
		lb.Next()
	case KeyArrowLeft:
		lb.Previous()
	}
}

// NextIndex returns the index Next would move to, without moving.
// It is 0 for an empty list.
func (lb *Lightbox) NextIndex() int {
	if len(lb.items) == 0 {
		return 0
	}
	return (lb.index + 1) % len(lb.items)
}

// PreviousIndex returns the index Previous would move to, without moving.
// It is 0 for an empty list.
func (lb *Lightbox) PreviousIndex() int {
	n := len(lb.items)
	if n == 0 {
		return 0
	}
	return (lb.index - 1 + n) % n
}

// Preview returns at most limit leading items and how many were left out.
// Work cards show three thumbnails and a "+N more" badge.
func (lb *Lightbox) Preview(limit int) ([]models.MediaItem, int) {
	if limit < 0 {
		limit = 0
	}
	if limit > len(lb.items) {
		limit = len(lb.items)
	}
	return lb.items[:limit], len(lb.items) - limit
}

func clamp(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}
