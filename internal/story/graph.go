// Package story walks the branching narrative graph.
package story

import (
	"fmt"
	"log/slog"

	"github.com/terra-clan/hero-quest/internal/content"
	"github.com/terra-clan/hero-quest/internal/models"
)

// AdvanceMode selects how the next node is resolved after a choice
type AdvanceMode string

const (
	// AdvanceByChoice follows the chosen option's next node
	AdvanceByChoice AdvanceMode = "choice"
	// AdvanceSequential moves to the node with id+1 whatever the choice
	AdvanceSequential AdvanceMode = "sequential"
)

// Valid reports whether m is a known advance mode
func (m AdvanceMode) Valid() bool {
	return m == AdvanceByChoice || m == AdvanceSequential
}

// Graph is the read-only story structure a walker moves through
type Graph struct {
	nodes    map[int]*models.StoryNode
	triggers map[int]models.Effect
	shortcut *models.Shortcut
	start    int
	mode     AdvanceMode
}

// NewGraph builds a graph from the story tables of a catalog
func NewGraph(c *content.Catalog, mode AdvanceMode) (*Graph, error) {
	if mode == "" {
		mode = AdvanceByChoice
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown advance mode %q", mode)
	}
	if mode == AdvanceSequential {
		slog.Warn("story advances sequentially; choice targets are ignored")
	}

	g := &Graph{
		nodes:    c.Nodes(),
		triggers: make(map[int]models.Effect, len(c.Triggers())),
		shortcut: c.Shortcut(),
		start:    c.StartNode(),
		mode:     mode,
	}
	for _, t := range c.Triggers() {
		g.triggers[t.Node] = t.Effect
	}
	return g, nil
}

// Node returns the node with the given id
func (g *Graph) Node(id int) (*models.StoryNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Start returns the id of the first node
func (g *Graph) Start() int { return g.start }

// Shortcut returns the shortcut, or nil
func (g *Graph) Shortcut() *models.Shortcut { return g.shortcut }

// Trigger returns the scripted effect of a node, or nil
func (g *Graph) Trigger(id int) *models.Effect {
	e, ok := g.triggers[id]
	if !ok {
		return nil
	}
	return &e
}

// next resolves the node that follows taking choice at node
func (g *Graph) next(node *models.StoryNode, choice *models.Choice) int {
	if g.mode == AdvanceSequential {
		return node.ID + 1
	}
	return choice.NextNode
}
