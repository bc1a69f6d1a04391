package app

import (
	"sync"
	"time"
)

// Status is the per-frame state published to observers.
type Status struct {
	Seq       uint64    `json:"seq"`
	Session   string    `json:"session"`
	Time      time.Time `json:"time"`
	Intent    string    `json:"intent"`
	Status    string    `json:"status"`
	CursorX   int       `json:"cursor_x"`
	CursorY   int       `json:"cursor_y"`
	Visible   bool      `json:"cursor_visible"`
	InkActive bool      `json:"ink_active"`
	Color     int       `json:"color"`
	ColorName string    `json:"color_name"`
	Eraser    bool      `json:"eraser"`
	Thickness int       `json:"thickness"`
	Preview   bool      `json:"preview"`
	Action    string    `json:"action,omitempty"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
}

// Snapshot is the latest published frame.
type Snapshot struct {
	Status Status
	// Canvas is the bare drawing, PNG encoded.
	Canvas []byte
	// Display is the composed view with toolbar and cursor, JPEG encoded.
	Display []byte
}

// Publisher hands the latest snapshot from the pipeline goroutine to readers.
// Byte slices are never modified after publication, so readers may keep them.
type Publisher struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[int]chan Status
	next int
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[int]chan Status)}
}

// Publish replaces the snapshot. A nil canvas or display keeps the previous one.
// Subscribers that fall behind lose their oldest pending status.
func (p *Publisher) Publish(s Status, canvasPNG, displayJPEG []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Status = s
	if canvasPNG != nil {
		p.snap.Canvas = canvasPNG
	}
	if displayJPEG != nil {
		p.snap.Display = displayJPEG
	}

	for _, ch := range p.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// View returns the latest snapshot.
func (p *Publisher) View() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Subscribe returns a channel of statuses and a function that closes it.
// buffer below 1 is treated as 1.
func (p *Publisher) Subscribe(buffer int) (<-chan Status, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Status, buffer)

	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			close(ch)
			p.mu.Unlock()
		})
	}
}

// Subscribers returns the number of open subscriptions.
func (p *Publisher) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
