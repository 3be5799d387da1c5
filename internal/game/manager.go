// Package game runs player operations: load state, apply a mutation, mirror it back.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/terra-clan/hero-quest/internal/content"
	"github.com/terra-clan/hero-quest/internal/metrics"
	"github.com/terra-clan/hero-quest/internal/session"
	"github.com/terra-clan/hero-quest/internal/storage"
	"github.com/terra-clan/hero-quest/internal/story"
)

const tracerName = "github.com/terra-clan/hero-quest/internal/game"

// Options holds optional parameters for a Manager
type Options struct {
	AdvanceMode    story.AdvanceMode
	RevealInterval time.Duration
	Metrics        *metrics.Metrics
}

// Manager coordinates content, session mutations, story dialogs and storage
type Manager struct {
	catalog        *content.Catalog
	graph          *story.Graph
	store          storage.Store
	dialogs        *story.Dialogs
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	revealInterval time.Duration
	locks          playerLocks
	now            func() time.Time
}

// NewManager creates a new Manager
func NewManager(catalog *content.Catalog, store storage.Store, opts Options) (*Manager, error) {
	graph, err := story.NewGraph(catalog, opts.AdvanceMode)
	if err != nil {
		return nil, fmt.Errorf("failed to build story graph: %w", err)
	}

	interval := opts.RevealInterval
	if interval <= 0 {
		interval = story.DefaultRevealInterval
	}

	return &Manager{
		catalog:        catalog,
		graph:          graph,
		store:          store,
		dialogs:        story.NewDialogs(),
		metrics:        opts.Metrics,
		tracer:         otel.Tracer(tracerName),
		revealInterval: interval,
		now:            time.Now,
	}, nil
}

// Catalog returns the content the manager serves
func (m *Manager) Catalog() *content.Catalog {
	return m.catalog
}

// RevealInterval is the delay between characters of a story reveal
func (m *Manager) RevealInterval() time.Duration {
	return m.revealInterval
}

// Ping checks the storage backend
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	return nil
}

// CreatePlayer allocates a player id and persists a fresh session
func (m *Manager) CreatePlayer(ctx context.Context) (string, session.State, error) {
	id := uuid.NewString()
	state, err := m.mutate(ctx, "create_player", id, func(*session.Session) error { return nil })
	if err != nil {
		return "", session.State{}, err
	}
	slog.Info("player created", "player_id", id)
	return id, state, nil
}

// State returns the persisted state of a player
func (m *Manager) State(ctx context.Context, playerID string) (session.State, error) {
	ctx, span := m.startSpan(ctx, "state", playerID)
	defer span.End()

	release := m.locks.lock(playerID)
	defer release()

	state, err := m.load(ctx, playerID)
	markSpan(span, err)
	return state, err
}

// Reset clears a player's progress and closes any open dialog
func (m *Manager) Reset(ctx context.Context, playerID string) error {
	start := m.now()
	ctx, span := m.startSpan(ctx, "reset", playerID)
	defer span.End()

	release := m.locks.lock(playerID)
	defer release()

	m.dialogs.Close(playerID)
	m.metrics.SetOpenDialogs(m.dialogs.Len())

	err := m.store.Clear(ctx, playerID)
	if err != nil {
		err = fmt.Errorf("failed to clear player state: %w", err)
	}
	markSpan(span, err)
	m.metrics.ObserveOperation("reset", err, m.now().Sub(start))
	if err == nil {
		slog.Info("player progress reset", "player_id", playerID)
	}
	return err
}

// SweepIdleDialogs closes story dialogs idle for longer than maxIdle.
// The position of a swept dialog is already persisted by each transition.
func (m *Manager) SweepIdleDialogs(maxIdle time.Duration) int {
	closed := m.dialogs.SweepIdle(maxIdle)
	m.metrics.SetOpenDialogs(m.dialogs.Len())
	return len(closed)
}

// PinStory keeps the player's story dialog open across idle sweeps while a
// live stream is attached to it
func (m *Manager) PinStory(playerID string) (unpin func()) {
	return m.dialogs.Pin(playerID)
}

// OpenDialogs returns the number of open story dialogs
func (m *Manager) OpenDialogs() int {
	return m.dialogs.Len()
}

// ValidatePlayerID checks that id has the shape of an allocated player id
func ValidatePlayerID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidPlayerID
	}
	return nil
}

// mutate runs fn against the player's session under the player lock and
// mirrors the result to storage
func (m *Manager) mutate(ctx context.Context, op, playerID string, fn func(*session.Session) error) (session.State, error) {
	start := m.now()
	ctx, span := m.startSpan(ctx, op, playerID)
	defer span.End()

	release := m.locks.lock(playerID)
	defer release()

	state, err := m.mutateLocked(ctx, playerID, fn)
	markSpan(span, err)
	m.metrics.ObserveOperation(op, err, m.now().Sub(start))
	return state, err
}

func (m *Manager) mutateLocked(ctx context.Context, playerID string, fn func(*session.Session) error) (session.State, error) {
	state, err := m.load(ctx, playerID)
	if err != nil {
		return session.State{}, err
	}

	sess := session.New(state)
	if err := fn(sess); err != nil {
		return session.State{}, err
	}

	next := sess.State()
	if err := m.store.Save(ctx, playerID, session.Encode(next)); err != nil {
		return session.State{}, fmt.Errorf("failed to save player state: %w", err)
	}
	return next, nil
}

func (m *Manager) load(ctx context.Context, playerID string) (session.State, error) {
	values, err := m.store.Load(ctx, playerID)
	if err != nil {
		return session.State{}, fmt.Errorf("failed to load player state: %w", err)
	}
	return session.DecodeFrom(values, m.initialState()), nil
}

// initialState is the state of a player with nothing persisted yet
func (m *Manager) initialState() session.State {
	return session.InitialAt(m.graph.Start())
}

func (m *Manager) startSpan(ctx context.Context, op, playerID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "game."+op, trace.WithAttributes(attribute.String("player.id", playerID)))
}

func markSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
