package models

import "slices"

// MissionType categorizes missions
type MissionType string

const (
	MissionAction     MissionType = "action"
	MissionReflection MissionType = "reflection"
	MissionChallenge  MissionType = "challenge"
	MissionEmotional  MissionType = "emotional"
)

// Valid reports whether t is a known mission type
func (t MissionType) Valid() bool {
	switch t {
	case MissionAction, MissionReflection, MissionChallenge, MissionEmotional:
		return true
	}
	return false
}

// Difficulty of a mission
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Mission is a discrete task awarding points on completion.
// Availability and completion live in session state, not here.
type Mission struct {
	ID                 int         `yaml:"id" json:"id"`
	Title              string      `yaml:"title" json:"title"`
	Description        string      `yaml:"description" json:"description"`
	Type               MissionType `yaml:"type" json:"type"`
	Difficulty         Difficulty  `yaml:"difficulty" json:"difficulty"`
	Points             int         `yaml:"points" json:"points"`
	CompletionMessage  string      `yaml:"completion_message" json:"completion_message"`
	RequiredArchetypes []string    `yaml:"required_archetypes" json:"required_archetypes,omitempty"`
	Tags               []string    `yaml:"tags" json:"tags,omitempty"`
}

// AllowsArchetype reports whether a player with the given archetype may see the mission
func (m *Mission) AllowsArchetype(archetype string) bool {
	if len(m.RequiredArchetypes) == 0 {
		return true
	}
	return slices.Contains(m.RequiredArchetypes, archetype)
}
