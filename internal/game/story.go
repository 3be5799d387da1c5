package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/hero-quest/internal/models"
	"github.com/terra-clan/hero-quest/internal/session"
	"github.com/terra-clan/hero-quest/internal/story"
	"github.com/terra-clan/hero-quest/internal/unlock"
)

// StoryStep is the outcome of a story operation
type StoryStep struct {
	View       models.StoryView   `json:"view"`
	Transition *story.Transition  `json:"transition,omitempty"`
	State      models.PlayerState `json:"state"`
}

// OpenStory opens the story dialog at the player's last visited node,
// replacing any dialog that was already open
func (m *Manager) OpenStory(ctx context.Context, playerID string) (*StoryStep, error) {
	start := m.now()
	ctx, span := m.startSpan(ctx, "open_story", playerID)
	defer span.End()

	release := m.locks.lock(playerID)
	defer release()

	state, err := m.load(ctx, playerID)
	markSpan(span, err)
	m.metrics.ObserveOperation("open_story", err, m.now().Sub(start))
	if err != nil {
		return nil, err
	}

	walker := story.NewWalker(m.graph, state.StoryNode)
	m.dialogs.Open(playerID, walker)
	m.metrics.SetOpenDialogs(m.dialogs.Len())

	if walker.Phase() == models.PhaseUnknown {
		slog.Warn("story opened at unknown node", "player_id", playerID, "node", walker.NodeID())
	}
	return &StoryStep{View: walker.View(), State: state.View()}, nil
}

// Story returns the open dialog of a player
func (m *Manager) Story(ctx context.Context, playerID string) (*StoryStep, error) {
	release := m.locks.lock(playerID)
	defer release()

	walker, ok := m.dialogs.Get(playerID)
	if !ok {
		return nil, ErrDialogNotOpen
	}

	state, err := m.load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return &StoryStep{View: walker.View(), State: state.View()}, nil
}

// RevealStory finishes revealing the current node and applies its scripted
// effect the first time the node's reveal completes
func (m *Manager) RevealStory(ctx context.Context, playerID string) (*StoryStep, error) {
	return m.storyOp(ctx, "reveal_story", playerID, func(w *story.Walker, s *session.Session) (*story.Transition, []string, error) {
		effect := w.RevealComplete()
		m.applyEffect(s, effect)
		return nil, m.effectMessages(effect), nil
	})
}

// ChooseStory takes a choice at the current node and applies its effect
func (m *Manager) ChooseStory(ctx context.Context, playerID string, choiceID int) (*StoryStep, error) {
	return m.storyOp(ctx, "choose_story", playerID, func(w *story.Walker, s *session.Session) (*story.Transition, []string, error) {
		t, err := w.Choose(choiceID)
		if err != nil {
			return nil, nil, err
		}
		m.applyEffect(s, t.Effect)
		s.MoveTo(t.To)
		return &t, m.effectMessages(t.Effect), nil
	})
}

// SkipStory jumps ahead through the story shortcut
func (m *Manager) SkipStory(ctx context.Context, playerID string) (*StoryStep, error) {
	return m.storyOp(ctx, "skip_story", playerID, func(w *story.Walker, s *session.Session) (*story.Transition, []string, error) {
		t, err := w.Skip()
		if err != nil {
			return nil, nil, err
		}
		m.applyEffect(s, t.Effect)
		s.MoveTo(t.To)
		return &t, m.effectMessages(t.Effect), nil
	})
}

// CloseStory closes the dialog and records the node it was closed at
func (m *Manager) CloseStory(ctx context.Context, playerID string) (*StoryStep, error) {
	return m.storyOp(ctx, opCloseStory, playerID, func(w *story.Walker, s *session.Session) (*story.Transition, []string, error) {
		s.MoveTo(w.Close())
		return nil, nil, nil
	})
}

const opCloseStory = "close_story"

type storyFunc func(w *story.Walker, s *session.Session) (*story.Transition, []string, error)

// storyOp runs fn against the open dialog and the session together, under
// the player lock. A rejected move or a failed save leaves both untouched.
// Closing removes the dialog once the save succeeds.
func (m *Manager) storyOp(ctx context.Context, op, playerID string, fn storyFunc) (*StoryStep, error) {
	start := m.now()
	ctx, span := m.startSpan(ctx, op, playerID)
	defer span.End()

	release := m.locks.lock(playerID)
	defer release()

	var (
		transition *story.Transition
		view       models.StoryView
		before     session.State
	)
	walker, ok := m.dialogs.Get(playerID)
	if !ok {
		markSpan(span, ErrDialogNotOpen)
		m.metrics.ObserveOperation(op, ErrDialogNotOpen, m.now().Sub(start))
		return nil, ErrDialogNotOpen
	}
	snapshot := *walker

	state, err := m.mutateLocked(ctx, playerID, func(s *session.Session) error {
		before = s.State()
		t, msgs, err := fn(walker, s)
		if err != nil {
			return err
		}
		transition = t
		view = walker.View()
		view.Messages = msgs
		return nil
	})
	markSpan(span, err)
	m.metrics.ObserveOperation(op, err, m.now().Sub(start))
	if err != nil {
		*walker = snapshot
		return nil, err
	}

	if op == opCloseStory {
		m.dialogs.Close(playerID)
		m.metrics.SetOpenDialogs(m.dialogs.Len())
	}

	if gained := state.Points - before.Points; gained > 0 {
		m.metrics.AddPoints(op, gained)
	}
	m.recordBadges(playerID, unlock.NewlyUnlocked(m.catalog.Badges(), before.Completed, before.Points, state.Completed, state.Points))

	if transition != nil {
		slog.Debug("story transition", "player_id", playerID, "from", transition.From, "to", transition.To)
	}
	return &StoryStep{View: view, Transition: transition, State: state.View()}, nil
}

// applyEffect applies e, dropping a mission unlock the catalog does not know
func (m *Manager) applyEffect(s *session.Session, e *models.Effect) {
	if e != nil && e.MissionUnlock != 0 && m.catalog.Mission(e.MissionUnlock) == nil {
		trimmed := *e
		trimmed.MissionUnlock = 0
		e = &trimmed
	}
	s.ApplyEffect(e)
}

// effectMessages renders the player-facing notices of an effect
func (m *Manager) effectMessages(e *models.Effect) []string {
	if e.IsZero() {
		return nil
	}
	var msgs []string
	if e.Points > 0 {
		msgs = append(msgs, fmt.Sprintf("+%d pontos", e.Points))
	}
	if e.MissionUnlock != 0 {
		if mission := m.catalog.Mission(e.MissionUnlock); mission != nil {
			msgs = append(msgs, fmt.Sprintf("Nova missão desbloqueada: %s", mission.Title))
		}
	}
	return msgs
}
