package models

// StoryNode is one unit of branching narrative
type StoryNode struct {
	ID       int      `yaml:"id" json:"id"`
	Text     string   `yaml:"text" json:"text"`
	Choices  []Choice `yaml:"choices" json:"choices,omitempty"`
	IsEnding bool     `yaml:"ending" json:"is_ending,omitempty"`
}

// Choice moves the walker from its node to NextNode
type Choice struct {
	ID       int     `yaml:"id" json:"id"`
	Text     string  `yaml:"text" json:"text"`
	NextNode int     `yaml:"next" json:"next_node"`
	Effect   *Effect `yaml:"effect" json:"effect,omitempty"`
}

// FindChoice returns the choice with the given id, or nil
func (n *StoryNode) FindChoice(id int) *Choice {
	for i := range n.Choices {
		if n.Choices[i].ID == id {
			return &n.Choices[i]
		}
	}
	return nil
}

// Effect is the payload applied when a choice is taken or a trigger fires.
// Zero fields are absent.
type Effect struct {
	Points        int    `yaml:"points" json:"points,omitempty"`
	Archetype     string `yaml:"archetype" json:"archetype,omitempty"`
	MissionUnlock int    `yaml:"mission_unlock" json:"mission_unlock,omitempty"`
}

// IsZero reports whether the effect carries nothing
func (e *Effect) IsZero() bool {
	return e == nil || (e.Points == 0 && e.Archetype == "" && e.MissionUnlock == 0)
}

// Trigger is a scripted side effect fired when the reveal of Node completes
type Trigger struct {
	Node   int    `yaml:"node" json:"node"`
	Effect Effect `yaml:"effect" json:"effect"`
}

// Shortcut lets a player jump ahead to Target while the current node is below Below
type Shortcut struct {
	Below  int    `yaml:"below" json:"below"`
	Target int    `yaml:"target" json:"target"`
	Points int    `yaml:"points" json:"points"`
	Label  string `yaml:"label" json:"label,omitempty"`
}
