package models

// Archetype represents a hero persona assigned after the initial quiz
type Archetype struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Traits      []string `yaml:"traits" json:"traits"`
	Style       string   `yaml:"style" json:"style,omitempty"`
}

// Question is a single quiz question
type Question struct {
	ID      int      `yaml:"id" json:"id"`
	Text    string   `yaml:"text" json:"text"`
	Options []Option `yaml:"options" json:"options"`
}

// Option is one answer to a question, weighted per archetype id
type Option struct {
	ID     string         `yaml:"id" json:"id"`
	Text   string         `yaml:"text" json:"text"`
	Points map[string]int `yaml:"points" json:"points"`
}

// FindOption returns the option with the given id, or nil
func (q *Question) FindOption(id string) *Option {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

// Assessment is the emotional self-assessment questionnaire
type Assessment struct {
	Title     string     `yaml:"title" json:"title"`
	Reward    int        `yaml:"reward" json:"reward"`
	Questions []Question `yaml:"questions" json:"questions"`
	// ReferralURL points players to professional help after completion
	ReferralURL string `yaml:"referral_url" json:"referral_url,omitempty"`
}
