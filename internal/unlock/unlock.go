// Package unlock evaluates badge and mission availability rules.
package unlock

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/terra-clan/hero-quest/internal/models"
)

// MinReflectionLength is the minimum trimmed length of a reflection answer
const MinReflectionLength = 10

// ErrReflectionTooShort rejects reflection missions with too little input
var ErrReflectionTooShort = errors.New("Sua reflexão é muito curta. Por favor, dedique um pouco mais de tempo a esta reflexão.")

// BadgeUnlocked reports whether a badge's requirement holds for the given state
func BadgeUnlocked(b models.Badge, completed []int, points int) bool {
	switch req := b.Requirement.(type) {
	case models.PointsRequirement:
		return points >= req.Threshold
	case models.MissionsRequirement:
		return len(completed) >= req.Count
	case models.SpecificMissionRequirement:
		return slices.Contains(completed, req.MissionID)
	}
	return false
}

// Badges evaluates every badge against the given state
func Badges(badges []models.Badge, completed []int, points int) []models.BadgeStatus {
	out := make([]models.BadgeStatus, 0, len(badges))
	for _, b := range badges {
		out = append(out, models.BadgeStatus{Badge: b, Unlocked: BadgeUnlocked(b, completed, points)})
	}
	return out
}

// NewlyUnlocked returns ids of badges locked before and unlocked after a change
func NewlyUnlocked(badges []models.Badge, beforeCompleted []int, beforePoints int, afterCompleted []int, afterPoints int) []string {
	var ids []string
	for _, b := range badges {
		if !BadgeUnlocked(b, beforeCompleted, beforePoints) && BadgeUnlocked(b, afterCompleted, afterPoints) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// VisibleMissions filters missions to those in the available set whose archetype
// requirement, if any, includes the player's archetype. Archetype-gated
// missions stay hidden until an archetype is assigned.
func VisibleMissions(missions []models.Mission, available []int, archetype string) []models.Mission {
	var out []models.Mission
	for i := range missions {
		if !slices.Contains(available, missions[i].ID) {
			continue
		}
		if !missions[i].AllowsArchetype(archetype) {
			continue
		}
		out = append(out, missions[i])
	}
	return out
}

// IsVisible reports whether a single mission passes the VisibleMissions filter
func IsVisible(m models.Mission, available []int, archetype string) bool {
	return slices.Contains(available, m.ID) && m.AllowsArchetype(archetype)
}

// ValidateCompletion checks the player input a mission type requires
func ValidateCompletion(m models.Mission, input string) error {
	if m.Type != models.MissionReflection {
		return nil
	}
	text := strings.TrimSpace(norm.NFC.String(input))
	if utf8.RuneCountInString(text) < MinReflectionLength {
		return ErrReflectionTooShort
	}
	return nil
}
