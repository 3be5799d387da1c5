package story

import (
	"sync"
	"time"
)

// Dialogs tracks the open story dialog of each player
type Dialogs struct {
	mu   sync.Mutex
	open map[string]*dialog
	pins map[string]int
	now  func() time.Time
}

type dialog struct {
	walker     *Walker
	lastActive time.Time
}

// NewDialogs creates an empty registry
func NewDialogs() *Dialogs {
	return &Dialogs{
		open: make(map[string]*dialog),
		pins: make(map[string]int),
		now:  time.Now,
	}
}

// Open registers w as the player's dialog, replacing any previous one
func (d *Dialogs) Open(playerID string, w *Walker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open[playerID] = &dialog{walker: w, lastActive: d.now()}
}

// Get returns the player's open dialog and marks it active
func (d *Dialogs) Get(playerID string) (*Walker, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dl, ok := d.open[playerID]
	if !ok {
		return nil, false
	}
	dl.lastActive = d.now()
	return dl.walker, true
}

// Close removes the player's dialog
func (d *Dialogs) Close(playerID string) (*Walker, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dl, ok := d.open[playerID]
	if !ok {
		return nil, false
	}
	delete(d.open, playerID)
	return dl.walker, true
}

// Pin keeps the player's dialogs out of idle sweeps until the returned
// func is called. Pins survive the dialog being reopened.
func (d *Dialogs) Pin(playerID string) (unpin func()) {
	d.mu.Lock()
	d.pins[playerID]++
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.pins[playerID]--; d.pins[playerID] <= 0 {
				delete(d.pins, playerID)
			}
			if dl, ok := d.open[playerID]; ok {
				dl.lastActive = d.now()
			}
		})
	}
}

// Len returns the number of open dialogs
func (d *Dialogs) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.open)
}

// SweepIdle closes unpinned dialogs inactive for longer than maxIdle and
// returns the affected player ids
func (d *Dialogs) SweepIdle(maxIdle time.Duration) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := d.now().Add(-maxIdle)
	var closed []string
	for id, dl := range d.open {
		if d.pins[id] == 0 && dl.lastActive.Before(cutoff) {
			delete(d.open, id)
			closed = append(closed, id)
		}
	}
	return closed
}
