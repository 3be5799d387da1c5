package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/terra-clan/hero-quest/internal/models"
)

// Severity of a content issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single content validation finding
type Issue struct {
	Severity Severity
	Table    string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Table, i.Message)
}

// Issues is a list of findings
type Issues []Issue

// Err joins error-severity issues, or returns nil
func (is Issues) Err() error {
	var errs []error
	for _, i := range is {
		if i.Severity == SeverityError {
			errs = append(errs, errors.New(i.Table+": "+i.Message))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidContent, errors.Join(errs...))
}

// Check validates cross references between content tables.
// Dangling story references are warnings since the walker treats them as inert.
func Check(c *Catalog) Issues {
	var issues Issues
	add := func(sev Severity, table, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Table: table, Message: fmt.Sprintf(format, args...)})
	}

	if len(c.archetypes) == 0 {
		add(SeverityWarning, ArchetypesFile, "no archetypes defined")
	}
	seenArch := make(map[string]bool)
	for _, a := range c.archetypes {
		if a.ID == "" {
			add(SeverityError, ArchetypesFile, "archetype without id")
			continue
		}
		if seenArch[a.ID] {
			add(SeverityError, ArchetypesFile, "duplicate archetype %q", a.ID)
		}
		seenArch[a.ID] = true
	}

	seenQ := make(map[int]bool)
	for _, q := range c.questions {
		if seenQ[q.ID] {
			add(SeverityError, QuestionsFile, "duplicate question %d", q.ID)
		}
		seenQ[q.ID] = true
		seenOpt := make(map[string]bool)
		for _, o := range q.Options {
			if o.ID == "" || seenOpt[o.ID] {
				add(SeverityError, QuestionsFile, "question %d: missing or duplicate option id %q", q.ID, o.ID)
			}
			seenOpt[o.ID] = true
			for arch := range o.Points {
				if !seenArch[arch] {
					add(SeverityWarning, QuestionsFile, "question %d option %s: weight for unknown archetype %q", q.ID, o.ID, arch)
				}
			}
		}
	}

	seenM := make(map[int]bool)
	for _, m := range c.missions {
		if seenM[m.ID] {
			add(SeverityError, MissionsFile, "duplicate mission %d", m.ID)
		}
		seenM[m.ID] = true
		if !m.Type.Valid() {
			add(SeverityError, MissionsFile, "mission %d: invalid type %q", m.ID, m.Type)
		}
		if !m.Difficulty.Valid() {
			add(SeverityError, MissionsFile, "mission %d: invalid difficulty %q", m.ID, m.Difficulty)
		}
		if m.Points < 0 {
			add(SeverityError, MissionsFile, "mission %d: negative points", m.ID)
		}
		for _, arch := range m.RequiredArchetypes {
			if !seenArch[arch] {
				add(SeverityError, MissionsFile, "mission %d: unknown required archetype %q", m.ID, arch)
			}
		}
	}

	seenB := make(map[string]bool)
	for _, b := range c.badges {
		if seenB[b.ID] {
			add(SeverityError, BadgesFile, "duplicate badge %q", b.ID)
		}
		seenB[b.ID] = true
		if req, ok := b.Requirement.(models.SpecificMissionRequirement); ok && !seenM[req.MissionID] {
			add(SeverityWarning, BadgesFile, "badge %q requires unknown mission %d", b.ID, req.MissionID)
		}
	}

	if len(c.nodes) > 0 {
		if _, ok := c.nodes[c.startNode]; !ok {
			add(SeverityWarning, StoryFile, "start node %d is not defined", c.startNode)
		}
	}
	ids := make([]int, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		n := c.nodes[id]
		for _, ch := range n.Choices {
			if _, ok := c.nodes[ch.NextNode]; !ok {
				add(SeverityWarning, StoryFile, "node %d choice %d leads to undefined node %d", id, ch.ID, ch.NextNode)
			}
			if ch.Effect != nil {
				checkEffect(add, seenArch, seenM, fmt.Sprintf("node %d choice %d", id, ch.ID), *ch.Effect)
			}
		}
		if len(n.Choices) == 0 && !n.IsEnding {
			add(SeverityWarning, StoryFile, "node %d has no choices and is not an ending", id)
		}
	}
	for _, t := range c.triggers {
		if _, ok := c.nodes[t.Node]; !ok {
			add(SeverityWarning, StoryFile, "trigger on undefined node %d", t.Node)
		}
		checkEffect(add, seenArch, seenM, fmt.Sprintf("trigger on node %d", t.Node), t.Effect)
	}
	if s := c.shortcut; s != nil {
		if _, ok := c.nodes[s.Target]; !ok {
			add(SeverityWarning, StoryFile, "shortcut targets undefined node %d", s.Target)
		}
	}

	for _, q := range c.assessment.Questions {
		if len(q.Options) == 0 {
			add(SeverityError, AssessmentFile, "question %d has no options", q.ID)
		}
	}
	if c.assessment.Reward < 0 {
		add(SeverityError, AssessmentFile, "negative reward")
	}

	return issues
}

func checkEffect(add func(Severity, string, string, ...any), archetypes map[string]bool, missions map[int]bool, where string, e models.Effect) {
	if e.MissionUnlock != 0 && !missions[e.MissionUnlock] {
		add(SeverityWarning, StoryFile, "%s unlocks undefined mission %d", where, e.MissionUnlock)
	}
	if e.Archetype != "" && !archetypes[e.Archetype] {
		add(SeverityWarning, StoryFile, "%s overrides to undefined archetype %q", where, e.Archetype)
	}
	if e.Points < 0 {
		add(SeverityError, StoryFile, "%s awards negative points", where)
	}
}
