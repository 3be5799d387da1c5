package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RequirementKind tags the badge requirement variants
type RequirementKind string

const (
	RequirePoints          RequirementKind = "points"
	RequireMissions        RequirementKind = "missions"
	RequireSpecificMission RequirementKind = "specific-mission"
)

// Requirement is the unlock condition of a badge. Implemented only by
// PointsRequirement, MissionsRequirement and SpecificMissionRequirement.
type Requirement interface {
	Kind() RequirementKind
	Value() int
	sealed()
}

// PointsRequirement unlocks once total points reach Threshold
type PointsRequirement struct {
	Threshold int
}

func (PointsRequirement) Kind() RequirementKind { return RequirePoints }
func (r PointsRequirement) Value() int          { return r.Threshold }
func (PointsRequirement) sealed()               {}

// MissionsRequirement unlocks once Count missions are completed
type MissionsRequirement struct {
	Count int
}

func (MissionsRequirement) Kind() RequirementKind { return RequireMissions }
func (r MissionsRequirement) Value() int          { return r.Count }
func (MissionsRequirement) sealed()               {}

// SpecificMissionRequirement unlocks once MissionID is completed
type SpecificMissionRequirement struct {
	MissionID int
}

func (SpecificMissionRequirement) Kind() RequirementKind { return RequireSpecificMission }
func (r SpecificMissionRequirement) Value() int          { return r.MissionID }
func (SpecificMissionRequirement) sealed()               {}

// NewRequirement builds a requirement from its tag and value
func NewRequirement(kind RequirementKind, value int) (Requirement, error) {
	switch kind {
	case RequirePoints:
		return PointsRequirement{Threshold: value}, nil
	case RequireMissions:
		return MissionsRequirement{Count: value}, nil
	case RequireSpecificMission:
		return SpecificMissionRequirement{MissionID: value}, nil
	}
	return nil, fmt.Errorf("unknown requirement kind %q", kind)
}

// Badge is an achievement unlocked by a predicate over session state
type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Style       string      `json:"style,omitempty"`
	Requirement Requirement `json:"-"`
}

// badgeYAML is the file form: exactly one requirement key is set
type badgeYAML struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Style       string `yaml:"style"`
	Requirement struct {
		Points          *int `yaml:"points"`
		Missions        *int `yaml:"missions"`
		SpecificMission *int `yaml:"specific_mission"`
	} `yaml:"requirement"`
}

// UnmarshalYAML decodes the badge and its requirement variant
func (b *Badge) UnmarshalYAML(node *yaml.Node) error {
	var raw badgeYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}

	var reqs []Requirement
	if raw.Requirement.Points != nil {
		reqs = append(reqs, PointsRequirement{Threshold: *raw.Requirement.Points})
	}
	if raw.Requirement.Missions != nil {
		reqs = append(reqs, MissionsRequirement{Count: *raw.Requirement.Missions})
	}
	if raw.Requirement.SpecificMission != nil {
		reqs = append(reqs, SpecificMissionRequirement{MissionID: *raw.Requirement.SpecificMission})
	}
	if len(reqs) != 1 {
		return fmt.Errorf("badge %q: expected exactly one requirement, got %d", raw.ID, len(reqs))
	}

	*b = Badge{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Style:       raw.Style,
		Requirement: reqs[0],
	}
	return nil
}

type requirementJSON struct {
	Type  RequirementKind `json:"type"`
	Value int             `json:"value"`
}

type badgeJSON struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Style       string           `json:"style,omitempty"`
	Requirement *requirementJSON `json:"requirement,omitempty"`
}

// MarshalJSON renders the requirement as {"type": ..., "value": ...}
func (b Badge) MarshalJSON() ([]byte, error) {
	out := badgeJSON{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Style:       b.Style,
	}
	if b.Requirement != nil {
		out.Requirement = &requirementJSON{Type: b.Requirement.Kind(), Value: b.Requirement.Value()}
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (b *Badge) UnmarshalJSON(data []byte) error {
	var in badgeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*b = Badge{ID: in.ID, Name: in.Name, Description: in.Description, Style: in.Style}
	if in.Requirement != nil {
		req, err := NewRequirement(in.Requirement.Type, in.Requirement.Value)
		if err != nil {
			return err
		}
		b.Requirement = req
	}
	return nil
}
