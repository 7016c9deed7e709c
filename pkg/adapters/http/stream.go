package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/dfa/pkg/domain"
)

// StreamManager fans load events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
	}
}

// Subscribe registers a buffered channel. The returned func unsubscribes and closes it.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Broadcast sends msg to every subscriber, dropping it for slow ones.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
		}
	}
}

type loadMessage struct {
	Source  string `json:"source"`
	States  int    `json:"states"`
	Symbols int    `json:"symbols"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Hooks returns lifecycle hooks that broadcast every load attempt.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(_ context.Context, e *domain.LoadEvent) {
			msg := loadMessage{Source: e.Source, States: e.States, Symbols: e.Symbols, OK: e.Err == nil}
			if e.Err != nil {
				msg.Error = e.Err.Error()
			}
			if data, err := json.Marshal(msg); err == nil {
				sm.Broadcast(string(data))
			}
		},
	}
}
