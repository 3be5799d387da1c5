package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/hero-quest/internal/models"
)

//go:embed data/*.yaml
var defaultData embed.FS

// Table file names, one per content table
const (
	ArchetypesFile = "archetypes.yaml"
	QuestionsFile  = "questions.yaml"
	MissionsFile   = "missions.yaml"
	BadgesFile     = "badges.yaml"
	StoryFile      = "story.yaml"
	AssessmentFile = "assessment.yaml"
)

var tableFiles = []string{ArchetypesFile, QuestionsFile, MissionsFile, BadgesFile, StoryFile, AssessmentFile}

// ErrInvalidContent is returned when content fails validation
var ErrInvalidContent = errors.New("invalid content")

// Loader manages loading of content tables.
// Tables from a directory override the embedded defaults file by file.
type Loader struct {
	mu      sync.RWMutex
	catalog *Catalog
}

// NewLoader creates a loader with an empty catalog
func NewLoader() *Loader {
	c := &Catalog{nodes: make(map[int]*models.StoryNode)}
	c.reindex()
	return &Loader{catalog: c}
}

// LoadDefaults loads the embedded content tables
func (l *Loader) LoadDefaults() error {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return fmt.Errorf("failed to open embedded content: %w", err)
	}
	return l.LoadFS(sub)
}

// LoadFromDir loads every known table file present in dir
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading content from directory", "dir", dir)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat content dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content path is not a directory: %s", dir)
	}
	return l.LoadFS(os.DirFS(dir))
}

// LoadFS loads table files from fsys; missing files keep the current table
func (l *Loader) LoadFS(fsys fs.FS) error {
	l.mu.RLock()
	next := l.catalog.clone()
	l.mu.RUnlock()

	loaded := 0
	for _, name := range tableFiles {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := decodeTable(next, name, data); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		loaded++
	}
	next.reindex()

	issues := Check(next)
	for _, issue := range issues {
		if issue.Severity == SeverityWarning {
			slog.Warn("content warning", "table", issue.Table, "message", issue.Message)
		}
	}
	if err := issues.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.catalog = next
	l.mu.Unlock()

	slog.Info("content loaded",
		"files", loaded,
		"archetypes", len(next.archetypes),
		"questions", len(next.questions),
		"missions", len(next.missions),
		"badges", len(next.badges),
		"story_nodes", len(next.nodes),
	)
	return nil
}

// LoadFromFile loads a single table file, chosen by its base name
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	l.mu.RLock()
	next := l.catalog.clone()
	l.mu.RUnlock()

	if err := decodeTable(next, filepath.Base(path), data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	next.reindex()
	if err := Check(next).Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.catalog = next
	l.mu.Unlock()
	return nil
}

// Catalog returns the current content snapshot
func (l *Loader) Catalog() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog
}

// Default returns a catalog built from the embedded tables
func Default() (*Catalog, error) {
	l := NewLoader()
	if err := l.LoadDefaults(); err != nil {
		return nil, err
	}
	return l.Catalog(), nil
}

// MustDefault is Default for tests and tools; it panics on error
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func decodeTable(c *Catalog, name string, data []byte) error {
	switch name {
	case ArchetypesFile:
		var f archetypesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return err
		}
		c.archetypes = f.Archetypes
	case QuestionsFile:
		var f questionsFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return err
		}
		c.questions = f.Questions
	case MissionsFile:
		var f missionsFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return err
		}
		c.missions = f.Missions
	case BadgesFile:
		var f badgesFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return err
		}
		c.badges = f.Badges
	case StoryFile:
		var f storyFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return err
		}
		nodes := make(map[int]*models.StoryNode, len(f.Nodes))
		for i := range f.Nodes {
			n := f.Nodes[i]
			if _, dup := nodes[n.ID]; dup {
				return fmt.Errorf("duplicate story node %d", n.ID)
			}
			nodes[n.ID] = &n
		}
		c.nodes = nodes
		c.startNode = f.Start
		c.triggers = f.Triggers
		c.shortcut = f.Shortcut
	case AssessmentFile:
		var a models.Assessment
		if err := yaml.Unmarshal(data, &a); err != nil {
			return err
		}
		c.assessment = a
	default:
		return fmt.Errorf("unknown content table %q", name)
	}
	return nil
}

// --- YAML file structs ---

type archetypesFile struct {
	Archetypes []models.Archetype `yaml:"archetypes"`
}

type questionsFile struct {
	Questions []models.Question `yaml:"questions"`
}

type missionsFile struct {
	Missions []models.Mission `yaml:"missions"`
}

type badgesFile struct {
	Badges []models.Badge `yaml:"badges"`
}

type storyFile struct {
	Start    int                `yaml:"start"`
	Nodes    []models.StoryNode `yaml:"nodes"`
	Triggers []models.Trigger   `yaml:"triggers"`
	Shortcut *models.Shortcut   `yaml:"shortcut"`
}
