package story

import (
	"context"
	"sync"
	"time"
)

// DefaultRevealInterval is the delay between revealed characters
const DefaultRevealInterval = 15 * time.Millisecond

// Reveal emits a text one character per tick
type Reveal struct {
	text     []rune
	interval time.Duration

	finish chan struct{}
	once   sync.Once
}

// NewReveal creates a reveal for text
func NewReveal(text string, interval time.Duration) *Reveal {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Reveal{
		text:     []rune(text),
		interval: interval,
		finish:   make(chan struct{}),
	}
}

// Finish makes a running reveal emit the rest of the text at once.
// It is safe to call more than once and from any goroutine.
func (r *Reveal) Finish() {
	r.once.Do(func() { close(r.finish) })
}

// Run emits characters through emit until the text is exhausted,
// Finish is called or ctx is done. An error from emit stops the reveal.
func (r *Reveal) Run(ctx context.Context, emit func(chunk string) error) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for pos := 0; pos < len(r.text); {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.finish:
			return emit(string(r.text[pos:]))
		case <-ticker.C:
			if err := emit(string(r.text[pos])); err != nil {
				return err
			}
			pos++
		}
	}
	return nil
}
