package models

import "time"

// Progress ratios shown on the profile
type Progress struct {
	Current int `json:"current"`
	Max     int `json:"max"`
	Percent int `json:"percent"`
}

// NewProgress computes a percentage capped at 100
func NewProgress(current, max int) Progress {
	p := Progress{Current: current, Max: max}
	if max > 0 {
		p.Percent = min(current*100/max, 100)
	}
	return p
}

// BadgeStatus pairs a badge with its unlock state
type BadgeStatus struct {
	Badge    Badge `json:"badge"`
	Unlocked bool  `json:"unlocked"`
}

// MissionView is a mission as presented to a player
type MissionView struct {
	Mission
	Completed bool `json:"completed"`
}

// PlayerState is the persisted session aggregate as seen by API clients
type PlayerState struct {
	Archetype         string `json:"archetype,omitempty"`
	Points            int    `json:"points"`
	CompletedMissions []int  `json:"completed_missions"`
	AvailableMissions []int  `json:"available_missions"`
	StoryNode         int    `json:"story_node"`
}

// Profile is the full player snapshot
type Profile struct {
	PlayerID  string        `json:"player_id"`
	State     PlayerState   `json:"state"`
	Archetype *Archetype    `json:"archetype,omitempty"`
	Badges    []BadgeStatus `json:"badges"`
	Missions  []MissionView `json:"missions"`
	// Progress bars: specific-mission badges, points, completed missions
	BadgeProgress   Progress  `json:"badge_progress"`
	PointsProgress  Progress  `json:"points_progress"`
	MissionProgress Progress  `json:"mission_progress"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// QuizRequest carries answers keyed by question id
type QuizRequest struct {
	Answers map[int]string `json:"answers"`
}

// QuizResult is returned after the quiz is scored
type QuizResult struct {
	Archetype Archetype `json:"archetype"`
	Message   string    `json:"message"`
}

// CompleteMissionRequest carries optional reflection input
type CompleteMissionRequest struct {
	Input string `json:"input,omitempty"`
}

// MissionResult is returned after a mission completion attempt
type MissionResult struct {
	MissionID      int      `json:"mission_id"`
	AlreadyDone    bool     `json:"already_completed"`
	PointsAwarded  int      `json:"points_awarded"`
	Points         int      `json:"points"`
	Message        string   `json:"message"`
	UnlockedBadges []string `json:"unlocked_badges,omitempty"`
}

// ProgressRequest mirrors progressStory(pointsGained?, missionUnlocked?)
type ProgressRequest struct {
	Points        *int `json:"points,omitempty"`
	MissionUnlock *int `json:"mission_unlock,omitempty"`
}

// AssessmentRequest carries answers to the emotional self-assessment
type AssessmentRequest struct {
	Answers map[int]string `json:"answers"`
}

// AssessmentResult is returned after the assessment is completed
type AssessmentResult struct {
	PointsAwarded int    `json:"points_awarded"`
	Points        int    `json:"points"`
	Message       string `json:"message"`
	ReferralURL   string `json:"referral_url,omitempty"`
}

// StoryPhase is the reveal sub-state of an open story dialog
type StoryPhase string

const (
	PhaseTyping         StoryPhase = "typing"
	PhaseAwaitingChoice StoryPhase = "awaiting_choice"
	PhaseUnknown        StoryPhase = "unknown_node"
)

// StoryView is the current state of a player's story dialog
type StoryView struct {
	NodeID      int        `json:"node_id"`
	Phase       StoryPhase `json:"phase"`
	Node        *StoryNode `json:"node,omitempty"`
	CanShortcut bool       `json:"can_shortcut"`
	Shortcut    *Shortcut  `json:"shortcut,omitempty"`
	Messages    []string   `json:"messages,omitempty"`
}
