package content

import (
	"github.com/terra-clan/hero-quest/internal/models"
)

// Catalog is an immutable snapshot of the static content tables
type Catalog struct {
	archetypes []models.Archetype
	questions  []models.Question
	missions   []models.Mission
	badges     []models.Badge
	assessment models.Assessment

	nodes     map[int]*models.StoryNode
	startNode int
	triggers  []models.Trigger
	shortcut  *models.Shortcut

	archetypeIdx map[string]int
	missionIdx   map[int]int
}

// Archetypes returns archetypes in declared order
func (c *Catalog) Archetypes() []models.Archetype { return c.archetypes }

// Archetype returns the archetype with the given id, or nil
func (c *Catalog) Archetype(id string) *models.Archetype {
	i, ok := c.archetypeIdx[id]
	if !ok {
		return nil
	}
	return &c.archetypes[i]
}

// Questions returns the quiz questions in order
func (c *Catalog) Questions() []models.Question { return c.questions }

// Missions returns all missions in declared order
func (c *Catalog) Missions() []models.Mission { return c.missions }

// Mission returns the mission with the given id, or nil
func (c *Catalog) Mission(id int) *models.Mission {
	i, ok := c.missionIdx[id]
	if !ok {
		return nil
	}
	return &c.missions[i]
}

// Badges returns all badges in declared order
func (c *Catalog) Badges() []models.Badge { return c.badges }

// Assessment returns the emotional self-assessment
func (c *Catalog) Assessment() models.Assessment { return c.assessment }

// Nodes returns the story node table keyed by id
func (c *Catalog) Nodes() map[int]*models.StoryNode { return c.nodes }

// StartNode is the node a fresh session begins at
func (c *Catalog) StartNode() int { return c.startNode }

// Triggers returns the scripted node-id side effects
func (c *Catalog) Triggers() []models.Trigger { return c.triggers }

// Shortcut returns the story shortcut, or nil
func (c *Catalog) Shortcut() *models.Shortcut { return c.shortcut }

func (c *Catalog) reindex() {
	c.archetypeIdx = make(map[string]int, len(c.archetypes))
	for i, a := range c.archetypes {
		c.archetypeIdx[a.ID] = i
	}
	c.missionIdx = make(map[int]int, len(c.missions))
	for i, m := range c.missions {
		c.missionIdx[m.ID] = i
	}
	if c.startNode == 0 {
		c.startNode = 1
	}
}

// clone returns a shallow copy so a loader can replace one table at a time
func (c *Catalog) clone() *Catalog {
	cp := *c
	return &cp
}
