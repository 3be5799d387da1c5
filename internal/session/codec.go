package session

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strconv"
)

// Persisted keys, one string value each
const (
	KeyArchetype = "hero-quest-hero-type"
	KeyPoints    = "hero-quest-points"
	KeyCompleted = "hero-quest-completed-missions"
	KeyStoryNode = "hero-quest-story-node"
	KeyAvailable = "hero-quest-available-missions"
)

// Keys lists every key the codec writes
var Keys = []string{KeyArchetype, KeyPoints, KeyCompleted, KeyStoryNode, KeyAvailable}

// Encode renders a state as persisted key/value pairs.
// The archetype key is omitted when no archetype is assigned.
func Encode(s State) map[string]string {
	out := map[string]string{
		KeyPoints:    strconv.Itoa(s.Points),
		KeyCompleted: encodeIDs(s.Completed),
		KeyStoryNode: strconv.Itoa(s.StoryNode),
		KeyAvailable: encodeIDs(s.Available),
	}
	if s.Archetype != "" {
		out[KeyArchetype] = s.Archetype
	}
	return out
}

// Decode rebuilds a state from persisted values.
// Absent or malformed values fall back to the initial default for that field.
func Decode(values map[string]string) State {
	return DecodeFrom(values, Initial())
}

// DecodeFrom is Decode with base supplying the defaults
func DecodeFrom(values map[string]string, base State) State {
	s := base.Clone()
	if v, ok := values[KeyArchetype]; ok {
		s.Archetype = v
	}
	if v, ok := values[KeyPoints]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			slog.Warn("ignoring malformed persisted value", "key", KeyPoints, "value", v)
		} else {
			s.Points = n
		}
	}
	if v, ok := values[KeyCompleted]; ok {
		if ids, ok := decodeIDs(KeyCompleted, v); ok {
			s.Completed = ids
		}
	}
	if v, ok := values[KeyStoryNode]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("ignoring malformed persisted value", "key", KeyStoryNode, "value", v)
		} else {
			s.StoryNode = n
		}
	}
	if v, ok := values[KeyAvailable]; ok {
		if ids, ok := decodeIDs(KeyAvailable, v); ok {
			s.Available = ids
		}
	}
	return s
}

func encodeIDs(ids []int) string {
	if ids == nil {
		ids = []int{}
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

func decodeIDs(key, v string) ([]int, bool) {
	var ids []int
	if err := json.Unmarshal([]byte(v), &ids); err != nil {
		slog.Warn("ignoring malformed persisted value", "key", key, "value", v, "error", err)
		return nil, false
	}
	// Sets: keep first occurrence order
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, true
}
