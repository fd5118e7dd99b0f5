// Package event defines the wire form of UI telemetry and routes decoded
// events to the classifier trackers.
package event

import (
	"time"

	"percept/internal/telemetry"
)

// #region type

// Type identifies one telemetry event kind. The prefix names the
// classifier the event feeds.
type Type string

const (
	// behavior: per-element pointer telemetry
	TypeHoverStart  Type = "behavior.hover_start"
	TypeHoverEnd    Type = "behavior.hover_end"
	TypePointerMove Type = "behavior.pointer_move"
	TypeClick       Type = "behavior.click"
	TypeRetreat     Type = "behavior.retreat"

	// recall: per-surface visit sessions
	TypeSessionEnter Type = "recall.enter"
	TypeSessionMove  Type = "recall.move"
	TypeSessionDepth Type = "recall.scroll"
	TypeSessionLeave Type = "recall.leave"

	// intent: page-level scroll, focus, and edge telemetry
	TypePageScroll Type = "intent.scroll"
	TypeFocus      Type = "intent.focus"
	TypePageMove   Type = "intent.move"

	// resets all three classifiers for the subject
	TypeReset Type = "reset"
)

// #endregion type

// #region event

// Event is one decoded telemetry record. At orders the timeline; Subject
// is the element id (behavior) or surface id (recall, intent). The
// remaining fields are populated per type.
type Event struct {
	At      time.Time `json:"at"`
	Type    Type      `json:"type"`
	Subject string    `json:"subject"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	// Bounds is the element box (behavior.pointer_move) or viewport box
	// (intent.move).
	Bounds telemetry.Bounds `json:"bounds"`

	// intent.scroll
	ScrollY         float64 `json:"scroll_y,omitempty"`
	ContainerHeight float64 `json:"container_height,omitempty"`

	// recall.scroll, fraction of the page reached
	Depth float64 `json:"depth,omitempty"`

	// intent.focus
	ElementID string `json:"element_id,omitempty"`
}

// #endregion event
