package story

import (
	"errors"

	"github.com/terra-clan/hero-quest/internal/models"
)

// Common errors
var (
	ErrUnknownNode         = errors.New("story node not found")
	ErrUnknownChoice       = errors.New("choice not found")
	ErrNotAwaitingChoice   = errors.New("story text is still being revealed")
	ErrShortcutUnavailable = errors.New("shortcut not available")
)

// Transition describes one move between nodes
type Transition struct {
	From   int            `json:"from"`
	To     int            `json:"to"`
	Choice int            `json:"choice,omitempty"`
	Effect *models.Effect `json:"effect,omitempty"`
}

// Walker tracks a player's position and reveal phase in the graph.
// A Walker is not safe for concurrent use.
type Walker struct {
	graph     *Graph
	nodeID    int
	node      *models.StoryNode
	phase     models.StoryPhase
	triggered bool
}

// NewWalker creates a walker entered at the given node
func NewWalker(g *Graph, start int) *Walker {
	w := &Walker{graph: g}
	w.Enter(start)
	return w
}

// Enter moves to a node and starts revealing it.
// A missing node leaves the walker inert in the unknown phase.
func (w *Walker) Enter(id int) models.StoryPhase {
	w.nodeID = id
	w.triggered = false
	node, ok := w.graph.Node(id)
	if !ok {
		w.node = nil
		w.phase = models.PhaseUnknown
		return w.phase
	}
	w.node = node
	w.phase = models.PhaseTyping
	return w.phase
}

// NodeID returns the current node id
func (w *Walker) NodeID() int { return w.nodeID }

// Node returns the current node, or nil when it does not exist
func (w *Walker) Node() *models.StoryNode { return w.node }

// Phase returns the reveal phase
func (w *Walker) Phase() models.StoryPhase { return w.phase }

// RevealComplete ends the typing phase. It returns the node's scripted
// effect the first time it is called after entering the node, nil otherwise.
func (w *Walker) RevealComplete() *models.Effect {
	if w.phase == models.PhaseUnknown {
		return nil
	}
	w.phase = models.PhaseAwaitingChoice
	if w.triggered {
		return nil
	}
	w.triggered = true
	return w.graph.Trigger(w.nodeID)
}

// Choose takes a choice of the current node and enters the target
func (w *Walker) Choose(choiceID int) (Transition, error) {
	switch w.phase {
	case models.PhaseUnknown:
		return Transition{}, ErrUnknownNode
	case models.PhaseTyping:
		return Transition{}, ErrNotAwaitingChoice
	}

	choice := w.node.FindChoice(choiceID)
	if choice == nil {
		return Transition{}, ErrUnknownChoice
	}
	to := w.graph.next(w.node, choice)
	if _, ok := w.graph.Node(to); !ok {
		return Transition{}, ErrUnknownNode
	}

	t := Transition{From: w.nodeID, To: to, Choice: choice.ID}
	if !choice.Effect.IsZero() {
		e := *choice.Effect
		t.Effect = &e
	}
	w.Enter(to)
	return t, nil
}

// CanSkip reports whether the shortcut is offered at the current node
func (w *Walker) CanSkip() bool {
	sc := w.graph.Shortcut()
	if sc == nil || w.nodeID >= sc.Below {
		return false
	}
	_, ok := w.graph.Node(sc.Target)
	return ok
}

// Skip jumps to the shortcut target, awarding its points
func (w *Walker) Skip() (Transition, error) {
	if !w.CanSkip() {
		return Transition{}, ErrShortcutUnavailable
	}
	sc := w.graph.Shortcut()
	t := Transition{From: w.nodeID, To: sc.Target}
	if sc.Points != 0 {
		t.Effect = &models.Effect{Points: sc.Points}
	}
	w.Enter(sc.Target)
	return t, nil
}

// Close ends the dialog and returns the node to remember
func (w *Walker) Close() int {
	return w.nodeID
}

// View returns a snapshot of the walker for clients
func (w *Walker) View() models.StoryView {
	v := models.StoryView{
		NodeID:      w.nodeID,
		Phase:       w.phase,
		Node:        w.node,
		CanShortcut: w.CanSkip(),
	}
	if v.CanShortcut {
		v.Shortcut = w.graph.Shortcut()
	}
	return v
}
