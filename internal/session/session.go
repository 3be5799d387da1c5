// Package session holds a player's progress and the mutations applied to it.
package session

import (
	"slices"

	"github.com/terra-clan/hero-quest/internal/models"
)

// DefaultStoryNode is the node a fresh session starts at
const DefaultStoryNode = 1

// DefaultAvailableMissions seeds a fresh session
var DefaultAvailableMissions = []int{1}

// State is the complete per-player progress
type State struct {
	Archetype string
	Points    int
	Completed []int
	Available []int
	StoryNode int
}

// Initial returns the state of a player who has not started
func Initial() State {
	return InitialAt(DefaultStoryNode)
}

// InitialAt returns a fresh state whose story begins at node
func InitialAt(node int) State {
	return State{
		Completed: []int{},
		Available: slices.Clone(DefaultAvailableMissions),
		StoryNode: node,
	}
}

// Clone returns a deep copy
func (s State) Clone() State {
	s.Completed = slices.Clone(s.Completed)
	s.Available = slices.Clone(s.Available)
	return s
}

// IsCompleted reports whether a mission has been completed
func (s State) IsCompleted(id int) bool {
	return slices.Contains(s.Completed, id)
}

// IsAvailable reports whether a mission has been unlocked
func (s State) IsAvailable(id int) bool {
	return slices.Contains(s.Available, id)
}

// View converts the state to its API representation
func (s State) View() models.PlayerState {
	return models.PlayerState{
		Archetype:         s.Archetype,
		Points:            s.Points,
		CompletedMissions: slices.Clone(s.Completed),
		AvailableMissions: slices.Clone(s.Available),
		StoryNode:         s.StoryNode,
	}
}

// Session applies mutations to a single player's state.
// A Session is not safe for concurrent use.
type Session struct {
	state State
}

// New creates a session starting from the given state
func New(state State) *Session {
	if state.Completed == nil {
		state.Completed = []int{}
	}
	if state.Available == nil {
		state.Available = []int{}
	}
	if state.StoryNode == 0 {
		state.StoryNode = DefaultStoryNode
	}
	return &Session{state: state.Clone()}
}

// State returns a copy of the current state
func (s *Session) State() State {
	return s.state.Clone()
}

// CompleteQuiz assigns the archetype; points are untouched
func (s *Session) CompleteQuiz(archetype string) {
	s.state.Archetype = archetype
}

// CompleteMission records a mission and awards its points.
// Completing an already completed mission changes nothing and returns false.
func (s *Session) CompleteMission(id, points int) bool {
	if s.state.IsCompleted(id) {
		return false
	}
	s.state.Completed = append(s.state.Completed, id)
	s.state.Points += points
	return true
}

// ProgressStory adds points and makes a mission available, each when given
func (s *Session) ProgressStory(points, missionUnlock *int) {
	if points != nil {
		s.state.Points += *points
	}
	if missionUnlock != nil && !s.state.IsAvailable(*missionUnlock) {
		s.state.Available = append(s.state.Available, *missionUnlock)
	}
}

// ApplyEffect applies a story effect's points and mission unlock.
// The archetype field of an effect is carried but not applied.
func (s *Session) ApplyEffect(e *models.Effect) {
	if e.IsZero() {
		return
	}
	var points, mission *int
	if e.Points != 0 {
		points = &e.Points
	}
	if e.MissionUnlock != 0 {
		mission = &e.MissionUnlock
	}
	s.ProgressStory(points, mission)
}

// MoveTo records the last visited story node
func (s *Session) MoveTo(node int) {
	s.state.StoryNode = node
}

// Reset returns the session to its initial state
func (s *Session) Reset() {
	s.state = Initial()
}
