package event

import (
	"go.uber.org/zap"
	"sync"
)

const listenerBuffer = 64

type Listener struct {
	eventType Type
	channel   chan interface{}
	done      chan struct{}
}

// Manager fans events out to listeners. Each listener has its own goroutine
// and receives its events in emission order.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
	closed    bool
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(msg interface{})) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := &Listener{
		eventType: eventType,
		channel:   make(chan interface{}, listenerBuffer),
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.listeners = append(m.listeners, listener)
	m.mu.Unlock()

	go func() {
		defer close(listener.done)
		for msg := range listener.channel {
			callback(msg)
		}
	}()
}

func (m *Manager) EmitEvent(eventType Type, msg interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		zap.L().With(zap.String("type", string(eventType))).Warn("EventManager: Emit after close")
		return
	}
	if len(m.listeners) == 0 {
		zap.L().Debug("No event listeners available")
	}

	for _, listener := range m.listeners {
		if listener.eventType == eventType {
			zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: Emitting event")
			listener.channel <- msg
		}
	}
}

// Close stops accepting events and waits for listeners to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for _, listener := range m.listeners {
		close(listener.channel)
	}
	listeners := m.listeners
	m.mu.Unlock()

	for _, listener := range listeners {
		<-listener.done
	}
}
