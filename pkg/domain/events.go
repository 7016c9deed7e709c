package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventLoad     EventType = "load"
	EventClassify EventType = "classify"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Duration  time.Duration `json:"duration"`
}

// LoadEvent is emitted after every load attempt, successful or not.
type LoadEvent struct {
	EventBase
	Source  string `json:"source"`
	States  int    `json:"states"`
	Symbols int    `json:"symbols"`
	Err     error  `json:"-"`
}

// ClassifyEvent is emitted after every classification.
type ClassifyEvent struct {
	EventBase
	Length   int   `json:"length"`
	Accepted bool  `json:"accepted"`
	Err      error `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnLoad     func(context.Context, *LoadEvent)
	OnClassify func(context.Context, *ClassifyEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnLoad: func(ctx context.Context, e *LoadEvent) {
			if h.OnLoad != nil {
				h.OnLoad(ctx, e)
			}
			if other.OnLoad != nil {
				other.OnLoad(ctx, e)
			}
		},
		OnClassify: func(ctx context.Context, e *ClassifyEvent) {
			if h.OnClassify != nil {
				h.OnClassify(ctx, e)
			}
			if other.OnClassify != nil {
				other.OnClassify(ctx, e)
			}
		},
	}
}
