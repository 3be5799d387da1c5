// Package scoring maps quiz answers to a dominant archetype.
package scoring

import "github.com/terra-clan/hero-quest/internal/models"

// Tally sums the weights of the chosen options per archetype id.
// Unknown questions, unknown options and unanswered questions add nothing.
func Tally(questions []models.Question, archetypes []models.Archetype, answers map[int]string) map[string]int {
	scores := make(map[string]int, len(archetypes))
	for _, a := range archetypes {
		scores[a.ID] = 0
	}

	for i := range questions {
		answer, ok := answers[questions[i].ID]
		if !ok {
			continue
		}
		option := questions[i].FindOption(answer)
		if option == nil {
			continue
		}
		for archetype, points := range option.Points {
			if _, known := scores[archetype]; known {
				scores[archetype] += points
			}
		}
	}
	return scores
}

// Calculate returns the archetype with the strictly greatest tally.
// Ties go to the earliest declared archetype, which also wins when nothing scored.
func Calculate(questions []models.Question, archetypes []models.Archetype, answers map[int]string) string {
	if len(archetypes) == 0 {
		return ""
	}
	scores := Tally(questions, archetypes, answers)

	dominant := archetypes[0].ID
	max := 0
	for _, a := range archetypes {
		if scores[a.ID] > max {
			max = scores[a.ID]
			dominant = a.ID
		}
	}
	return dominant
}
