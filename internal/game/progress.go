package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terra-clan/hero-quest/internal/models"
	"github.com/terra-clan/hero-quest/internal/scoring"
	"github.com/terra-clan/hero-quest/internal/session"
	"github.com/terra-clan/hero-quest/internal/unlock"
)

// PointsGoal is the points total shown as a full progress bar
const PointsGoal = 200

// CompleteQuiz scores the answers and assigns the resulting archetype
func (m *Manager) CompleteQuiz(ctx context.Context, playerID string, answers map[int]string) (*models.QuizResult, error) {
	archetypeID := scoring.Calculate(m.catalog.Questions(), m.catalog.Archetypes(), answers)
	archetype := m.catalog.Archetype(archetypeID)
	if archetype == nil {
		return nil, ErrNoArchetypes
	}

	_, err := m.mutate(ctx, "complete_quiz", playerID, func(s *session.Session) error {
		s.CompleteQuiz(archetypeID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("quiz completed", "player_id", playerID, "archetype", archetypeID)
	return &models.QuizResult{
		Archetype: *archetype,
		Message:   fmt.Sprintf("Você é %s!", archetype.Name),
	}, nil
}

// Missions returns the missions visible to a player
func (m *Manager) Missions(ctx context.Context, playerID string) ([]models.MissionView, error) {
	state, err := m.State(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return m.missionViews(state), nil
}

func (m *Manager) missionViews(state session.State) []models.MissionView {
	visible := unlock.VisibleMissions(m.catalog.Missions(), state.Available, state.Archetype)
	views := make([]models.MissionView, 0, len(visible))
	for _, mission := range visible {
		views = append(views, models.MissionView{Mission: mission, Completed: state.IsCompleted(mission.ID)})
	}
	return views
}

// CompleteMission validates input, records the mission and awards its points.
// Completing a mission twice is accepted and changes nothing.
func (m *Manager) CompleteMission(ctx context.Context, playerID string, missionID int, input string) (*models.MissionResult, error) {
	mission := m.catalog.Mission(missionID)
	if mission == nil {
		return nil, ErrMissionNotFound
	}

	result := &models.MissionResult{MissionID: missionID}
	state, err := m.mutate(ctx, "complete_mission", playerID, func(s *session.Session) error {
		before := s.State()
		if !unlock.IsVisible(*mission, before.Available, before.Archetype) {
			return ErrMissionLocked
		}
		if before.IsCompleted(missionID) {
			result.AlreadyDone = true
			return nil
		}
		if err := unlock.ValidateCompletion(*mission, input); err != nil {
			return err
		}

		s.CompleteMission(missionID, mission.Points)
		after := s.State()
		result.PointsAwarded = mission.Points
		result.UnlockedBadges = unlock.NewlyUnlocked(m.catalog.Badges(), before.Completed, before.Points, after.Completed, after.Points)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Points = state.Points
	if result.AlreadyDone {
		result.Message = "Missão já concluída."
		return result, nil
	}

	result.Message = mission.CompletionMessage
	if result.Message == "" {
		result.Message = fmt.Sprintf("Missão concluída! +%d pontos", mission.Points)
	}
	m.metrics.AddPoints("mission", mission.Points)
	m.recordBadges(playerID, result.UnlockedBadges)

	slog.Info("mission completed",
		"player_id", playerID,
		"mission_id", missionID,
		"points", state.Points,
	)
	return result, nil
}

// Badges returns every badge with its unlock state for a player
func (m *Manager) Badges(ctx context.Context, playerID string) ([]models.BadgeStatus, error) {
	state, err := m.State(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return unlock.Badges(m.catalog.Badges(), state.Completed, state.Points), nil
}

// CompleteAssessment checks every question was answered and awards the reward
func (m *Manager) CompleteAssessment(ctx context.Context, playerID string, answers map[int]string) (*models.AssessmentResult, error) {
	a := m.catalog.Assessment()
	for _, q := range a.Questions {
		if q.FindOption(answers[q.ID]) == nil {
			return nil, fmt.Errorf("%w: question %d", ErrIncompleteAssessment, q.ID)
		}
	}

	reward := a.Reward
	var unlocked []string
	state, err := m.mutate(ctx, "complete_assessment", playerID, func(s *session.Session) error {
		before := s.State()
		s.ProgressStory(&reward, nil)
		after := s.State()
		unlocked = unlock.NewlyUnlocked(m.catalog.Badges(), before.Completed, before.Points, after.Completed, after.Points)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.metrics.AddPoints("assessment", reward)
	m.recordBadges(playerID, unlocked)

	return &models.AssessmentResult{
		PointsAwarded: reward,
		Points:        state.Points,
		Message:       fmt.Sprintf("Avaliação concluída! +%d pontos", reward),
		ReferralURL:   a.ReferralURL,
	}, nil
}

// ProgressStory adds points and unlocks a mission, each when given.
// A mission id missing from the catalog is ignored.
func (m *Manager) ProgressStory(ctx context.Context, playerID string, req models.ProgressRequest) (session.State, error) {
	if req.MissionUnlock != nil && m.catalog.Mission(*req.MissionUnlock) == nil {
		slog.Warn("ignoring unlock of unknown mission", "player_id", playerID, "mission_id", *req.MissionUnlock)
		req.MissionUnlock = nil
	}

	var unlocked []string
	state, err := m.mutate(ctx, "progress_story", playerID, func(s *session.Session) error {
		before := s.State()
		s.ProgressStory(req.Points, req.MissionUnlock)
		after := s.State()
		unlocked = unlock.NewlyUnlocked(m.catalog.Badges(), before.Completed, before.Points, after.Completed, after.Points)
		return nil
	})
	if err != nil {
		return session.State{}, err
	}
	if req.Points != nil {
		m.metrics.AddPoints("story", *req.Points)
	}
	m.recordBadges(playerID, unlocked)
	return state, nil
}

// Profile builds the full snapshot of a player's progress
func (m *Manager) Profile(ctx context.Context, playerID string) (*models.Profile, error) {
	state, err := m.State(ctx, playerID)
	if err != nil {
		return nil, err
	}

	badges := unlock.Badges(m.catalog.Badges(), state.Completed, state.Points)
	specific, specificUnlocked := 0, 0
	for _, b := range badges {
		if b.Badge.Requirement != nil && b.Badge.Requirement.Kind() == models.RequireSpecificMission {
			specific++
			if b.Unlocked {
				specificUnlocked++
			}
		}
	}

	return &models.Profile{
		PlayerID:        playerID,
		State:           state.View(),
		Archetype:       m.catalog.Archetype(state.Archetype),
		Badges:          badges,
		Missions:        m.missionViews(state),
		BadgeProgress:   models.NewProgress(specificUnlocked, specific),
		PointsProgress:  models.NewProgress(state.Points, PointsGoal),
		MissionProgress: models.NewProgress(len(state.Completed), len(m.catalog.Missions())),
		GeneratedAt:     m.now().UTC(),
	}, nil
}

func (m *Manager) recordBadges(playerID string, ids []string) {
	for _, id := range ids {
		m.metrics.IncBadgeUnlocked(id)
		slog.Info("badge unlocked", "player_id", playerID, "badge", id)
	}
}
