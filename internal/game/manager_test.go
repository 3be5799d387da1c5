package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/hero-quest/internal/content"
	"github.com/terra-clan/hero-quest/internal/metrics"
	"github.com/terra-clan/hero-quest/internal/models"
	"github.com/terra-clan/hero-quest/internal/session"
	"github.com/terra-clan/hero-quest/internal/storage"
	"github.com/terra-clan/hero-quest/internal/story"
	"github.com/terra-clan/hero-quest/internal/unlock"
)

const longReflection = "Coragem para mim é agir apesar do medo."

func newTestManager(t *testing.T, store storage.Store) *Manager {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	m, err := NewManager(content.MustDefault(), store, Options{
		Metrics: metrics.MustNewMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return m
}

func newPlayer(t *testing.T, m *Manager) string {
	t.Helper()
	id, state, err := m.CreatePlayer(context.Background())
	require.NoError(t, err)
	require.NoError(t, ValidatePlayerID(id))
	require.Equal(t, session.Initial(), state)
	return id
}

func TestCompleteQuizAssignsArchetype(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	res, err := m.CompleteQuiz(ctx, id, map[int]string{1: "a", 2: "a", 3: "a"})
	require.NoError(t, err)
	assert.Equal(t, "warrior", res.Archetype.ID)

	state, err := m.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "warrior", state.Archetype)
	assert.Zero(t, state.Points)

	// Unanswered quiz falls back to the first archetype
	res, err = m.CompleteQuiz(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, "warrior", res.Archetype.ID)
}

func TestCompleteMission(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.CompleteMission(ctx, id, 1, "curto")
	assert.ErrorIs(t, err, unlock.ErrReflectionTooShort)
	state, _ := m.State(ctx, id)
	assert.Empty(t, state.Completed)

	res, err := m.CompleteMission(ctx, id, 1, longReflection)
	require.NoError(t, err)
	assert.False(t, res.AlreadyDone)
	assert.Equal(t, 10, res.PointsAwarded)
	assert.Equal(t, 10, res.Points)
	assert.Equal(t, []string{"first-step"}, res.UnlockedBadges)
	assert.NotEmpty(t, res.Message)

	res, err = m.CompleteMission(ctx, id, 1, "")
	require.NoError(t, err)
	assert.True(t, res.AlreadyDone)
	assert.Equal(t, 10, res.Points)
	assert.Zero(t, res.PointsAwarded)
}

func TestCompleteMissionGating(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.CompleteMission(ctx, id, 999, "")
	assert.ErrorIs(t, err, ErrMissionNotFound)

	_, err = m.CompleteMission(ctx, id, 2, "")
	assert.ErrorIs(t, err, ErrMissionLocked)

	// Mission 4 needs the warrior archetype even once unlocked
	four := 4
	_, err = m.ProgressStory(ctx, id, models.ProgressRequest{MissionUnlock: &four})
	require.NoError(t, err)
	_, err = m.CompleteMission(ctx, id, 4, "")
	assert.ErrorIs(t, err, ErrMissionLocked)

	_, err = m.CompleteQuiz(ctx, id, map[int]string{1: "a", 2: "a", 3: "a"})
	require.NoError(t, err)
	res, err := m.CompleteMission(ctx, id, 4, "")
	require.NoError(t, err)
	assert.Equal(t, 25, res.Points)

	missions, err := m.Missions(ctx, id)
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, 1, missions[0].ID)
	assert.False(t, missions[0].Completed)
	assert.Equal(t, 4, missions[1].ID)
	assert.True(t, missions[1].Completed)
}

func TestStoryWalkthrough(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.ChooseStory(ctx, id, 1)
	assert.ErrorIs(t, err, ErrDialogNotOpen)

	step, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, step.View.NodeID)
	assert.Equal(t, models.PhaseTyping, step.View.Phase)
	assert.Equal(t, 1, m.OpenDialogs())

	_, err = m.ChooseStory(ctx, id, 1)
	assert.ErrorIs(t, err, story.ErrNotAwaitingChoice)

	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	step, err = m.ChooseStory(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, step.View.NodeID)
	assert.Equal(t, 10, step.State.Points)
	assert.Equal(t, []string{"+10 pontos"}, step.View.Messages)
	require.NotNil(t, step.Transition)
	assert.Equal(t, 1, step.Transition.From)

	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	_, err = m.ChooseStory(ctx, id, 1)
	require.NoError(t, err)
	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	step, err = m.ChooseStory(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, step.View.NodeID)
	assert.Equal(t, []int{1, 2}, step.State.AvailableMissions)

	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	_, err = m.ChooseStory(ctx, id, 7)
	assert.ErrorIs(t, err, story.ErrUnknownChoice)

	step, err = m.CloseStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, step.State.StoryNode)
	assert.Zero(t, m.OpenDialogs())

	// Reopening resumes at the persisted node
	step, err = m.OpenStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, step.View.NodeID)
}

func TestStoryShortcutAndTriggers(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	step, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	assert.True(t, step.View.CanShortcut)

	step, err = m.SkipStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 19, step.View.NodeID)
	assert.Equal(t, 100, step.State.Points)
	assert.False(t, step.View.CanShortcut)

	_, err = m.SkipStory(ctx, id)
	assert.ErrorIs(t, err, story.ErrShortcutUnavailable)

	step, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, step.State.AvailableMissions, 10)
	assert.Len(t, step.View.Messages, 1)

	// A second reveal of the same entry fires nothing
	step, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, step.View.Messages)

	_, err = m.ChooseStory(ctx, id, 2)
	require.NoError(t, err)
	step, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 21, step.View.NodeID)
	assert.Contains(t, step.State.AvailableMissions, 11)
	assert.True(t, step.View.Node.IsEnding)
}

func TestStoryAtUnknownNodeIsInert(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := newTestManager(t, store)
	id := newPlayer(t, m)

	st := session.Initial()
	st.StoryNode = 404
	require.NoError(t, store.Save(ctx, id, session.Encode(st)))

	step, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseUnknown, step.View.Phase)
	assert.Nil(t, step.View.Node)

	_, err = m.ChooseStory(ctx, id, 1)
	assert.ErrorIs(t, err, story.ErrUnknownNode)

	step, err = m.RevealStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseUnknown, step.View.Phase)

	step, err = m.CloseStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 404, step.State.StoryNode)
}

type flakyStore struct {
	storage.Store
	failSaves bool
}

func (f *flakyStore) Save(ctx context.Context, playerID string, values map[string]string) error {
	if f.failSaves {
		return errors.New("connection reset")
	}
	return f.Store.Save(ctx, playerID, values)
}

func TestStoryFailedSaveKeepsDialog(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: storage.NewMemoryStore()}
	m := newTestManager(t, store)
	id := newPlayer(t, m)

	_, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)

	store.failSaves = true
	_, err = m.ChooseStory(ctx, id, 1)
	assert.Error(t, err)

	store.failSaves = false
	step, err := m.Story(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, step.View.NodeID)
	assert.Equal(t, models.PhaseAwaitingChoice, step.View.Phase)
	assert.Zero(t, step.State.Points)

	step, err = m.ChooseStory(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, step.View.NodeID)
}

func TestCompleteAssessment(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.CompleteAssessment(ctx, id, map[int]string{1: "a"})
	assert.ErrorIs(t, err, ErrIncompleteAssessment)

	answers := make(map[int]string)
	for _, q := range m.Catalog().Assessment().Questions {
		answers[q.ID] = "b"
	}
	answers[3] = "z"
	_, err = m.CompleteAssessment(ctx, id, answers)
	assert.ErrorIs(t, err, ErrIncompleteAssessment)

	answers[3] = "d"
	res, err := m.CompleteAssessment(ctx, id, answers)
	require.NoError(t, err)
	assert.Equal(t, 50, res.PointsAwarded)
	assert.Equal(t, 50, res.Points)
	assert.NotEmpty(t, res.ReferralURL)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.CompleteQuiz(ctx, id, map[int]string{1: "b", 2: "c", 3: "c"})
	require.NoError(t, err)
	_, err = m.CompleteMission(ctx, id, 1, longReflection)
	require.NoError(t, err)

	p, err := m.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, p.PlayerID)
	require.NotNil(t, p.Archetype)
	assert.Equal(t, "mentor", p.Archetype.ID)
	assert.Equal(t, models.Progress{Current: 10, Max: PointsGoal, Percent: 5}, p.PointsProgress)
	assert.Equal(t, 1, p.MissionProgress.Current)
	assert.Equal(t, len(m.Catalog().Missions()), p.MissionProgress.Max)
	assert.Equal(t, 2, p.BadgeProgress.Max)
	assert.Len(t, p.Badges, len(m.Catalog().Badges()))
	assert.False(t, p.GeneratedAt.IsZero())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.CompleteMission(ctx, id, 1, longReflection)
	require.NoError(t, err)
	_, err = m.OpenStory(ctx, id)
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx, id))
	state, err := m.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.Initial(), state)

	_, err = m.Story(ctx, id)
	assert.ErrorIs(t, err, ErrDialogNotOpen)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			one := 1
			_, err := m.ProgressStory(ctx, id, models.ProgressRequest{Points: &one})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := m.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 50, state.Points)
}

func TestSweepIdleDialogs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.OpenStory(ctx, id)
	require.NoError(t, err)

	assert.Zero(t, m.SweepIdleDialogs(time.Hour))
	assert.Equal(t, 1, m.SweepIdleDialogs(-time.Second))
	assert.Zero(t, m.OpenDialogs())
}

func TestPinnedStorySurvivesSweep(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	unpin := m.PinStory(id)
	_, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)

	assert.Zero(t, m.SweepIdleDialogs(-time.Second))
	step, err := m.ChooseStory(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, step.View.NodeID)

	unpin()
	assert.Equal(t, 1, m.SweepIdleDialogs(-time.Second))
}

func TestStoryMoveAfterResetIsRejected(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	_, err = m.RevealStory(ctx, id)
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx, id))

	_, err = m.ChooseStory(ctx, id, 1)
	assert.ErrorIs(t, err, ErrDialogNotOpen)
	_, err = m.CloseStory(ctx, id)
	assert.ErrorIs(t, err, ErrDialogNotOpen)

	state, err := m.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, session.Initial(), state)
}

func TestConcurrentStoryMovesAndResets(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := m.OpenStory(ctx, id); err != nil {
				return
			}
			m.RevealStory(ctx, id)
			if step, err := m.ChooseStory(ctx, id, 1); err == nil {
				// The move is applied to the state it was made from
				assert.Equal(t, step.View.NodeID, step.State.StoryNode)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Reset(ctx, id))
		}()
	}
	wg.Wait()
}

func TestCloseStoryRemovesDialog(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	_, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, m.OpenDialogs())

	_, err = m.CloseStory(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, m.OpenDialogs())
	_, err = m.Story(ctx, id)
	assert.ErrorIs(t, err, ErrDialogNotOpen)
}

func TestProgressStoryIgnoresUnknownMission(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, nil)
	id := newPlayer(t, m)

	points, missing := 5, 999
	state, err := m.ProgressStory(ctx, id, models.ProgressRequest{Points: &points, MissionUnlock: &missing})
	require.NoError(t, err)
	assert.Equal(t, 5, state.Points)
	assert.Equal(t, []int{1}, state.Available)

	known := 3
	state, err = m.ProgressStory(ctx, id, models.ProgressRequest{MissionUnlock: &known})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, state.Available)
}

func TestFreshPlayerStartsAtStoryStart(t *testing.T) {
	ctx := context.Background()

	loader := content.NewLoader()
	require.NoError(t, loader.LoadDefaults())
	require.NoError(t, loader.LoadFS(fstest.MapFS{
		content.StoryFile: {Data: []byte(`
start: 5
nodes:
  - id: 1
    text: Um começo esquecido
    choices:
      - {id: 1, text: Seguir, next: 5}
  - id: 5
    text: A encruzilhada
    choices:
      - {id: 1, text: Voltar, next: 1}
`)},
	}))
	require.Equal(t, 5, loader.Catalog().StartNode())

	m, err := NewManager(loader.Catalog(), storage.NewMemoryStore(), Options{})
	require.NoError(t, err)

	id, state, err := m.CreatePlayer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, state.StoryNode)

	step, err := m.OpenStory(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, step.View.NodeID)

	require.NoError(t, m.Reset(ctx, id))
	state, err = m.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, state.StoryNode)
}

func TestValidatePlayerID(t *testing.T) {
	assert.ErrorIs(t, ValidatePlayerID("not-a-uuid"), ErrInvalidPlayerID)
	assert.NoError(t, ValidatePlayerID("7f0b2a52-5d0e-4c3e-9a7e-2f1d3c4b5a69"))
}
