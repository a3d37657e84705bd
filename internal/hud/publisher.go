package hud

import (
	"sync"

	"gocv.io/x/gocv"
)

// subscriberBuffer is the per-subscriber queue length. Updates beyond it are
// dropped for that subscriber only.
const subscriberBuffer = 8

// Publisher keeps the latest annotated frame and fans HUD state out to
// subscribers. It is safe for concurrent use.
type Publisher struct {
	mu     sync.RWMutex
	jpeg   []byte
	frame  Frame
	seq    uint64
	subs   map[chan Frame]struct{}
	closed bool
}

// NewPublisher creates an empty Publisher.
func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[chan Frame]struct{})}
}

// Publish encodes mat as JPEG and stores it with f. A nil or empty mat
// only updates the state.
func (p *Publisher) Publish(mat *gocv.Mat, f Frame) error {
	var data []byte
	if mat != nil && !mat.Empty() {
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
		if err != nil {
			return err
		}
		data = append([]byte(nil), buf.GetBytes()...)
		buf.Close()
	}
	p.publish(data, f)
	return nil
}

func (p *Publisher) publish(jpeg []byte, f Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if jpeg != nil {
		p.jpeg = jpeg
	}
	p.frame = f
	p.seq++

	for ch := range p.subs {
		select {
		case ch <- f:
		default:
		}
	}
}

// Latest returns the latest JPEG, its HUD state and a sequence number that
// increases with every publish. The JPEG must not be modified.
func (p *Publisher) Latest() ([]byte, Frame, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.frame, p.seq
}

// Subscribe returns a channel of HUD updates and a function that cancels the
// subscription. The channel is closed on cancel or Close.
func (p *Publisher) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, subscriberBuffer)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[ch]; ok {
				delete(p.subs, ch)
				close(ch)
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (p *Publisher) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// Close ends every subscription. Later publishes are ignored.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for ch := range p.subs {
		delete(p.subs, ch)
		close(ch)
	}
}
