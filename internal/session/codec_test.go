package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	got := Encode(State{
		Archetype: "mentor",
		Points:    45,
		Completed: []int{1, 3},
		Available: []int{1, 3, 6},
		StoryNode: 9,
	})
	want := map[string]string{
		KeyArchetype: "mentor",
		KeyPoints:    "45",
		KeyCompleted: "[1,3]",
		KeyStoryNode: "9",
		KeyAvailable: "[1,3,6]",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeOmitsUnsetArchetype(t *testing.T) {
	got := Encode(Initial())
	if _, ok := got[KeyArchetype]; ok {
		t.Error("expected archetype key to be omitted")
	}
	if got[KeyCompleted] != "[]" {
		t.Errorf("expected empty array, got %q", got[KeyCompleted])
	}
}

func TestDecodeRestoresEncodedState(t *testing.T) {
	st := State{Archetype: "rebel", Points: 250, Completed: []int{7, 2}, Available: []int{1, 2, 7}, StoryNode: 21}
	if diff := cmp.Diff(st, Decode(Encode(st))); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   State
	}{
		{
			name:   "empty storage",
			values: nil,
			want:   Initial(),
		},
		{
			name: "malformed points",
			values: map[string]string{
				KeyPoints:    "lots",
				KeyStoryNode: "4",
			},
			want: State{Completed: []int{}, Available: []int{1}, StoryNode: 4},
		},
		{
			name: "malformed missions",
			values: map[string]string{
				KeyCompleted: "[1,",
				KeyAvailable: "{}",
				KeyPoints:    "30",
			},
			want: State{Points: 30, Completed: []int{}, Available: []int{1}, StoryNode: 1},
		},
		{
			name: "malformed story node",
			values: map[string]string{
				KeyStoryNode: "nine",
				KeyArchetype: "warrior",
			},
			want: State{Archetype: "warrior", Completed: []int{}, Available: []int{1}, StoryNode: 1},
		},
		{
			name: "duplicate mission ids",
			values: map[string]string{
				KeyCompleted: "[2,2,1,2]",
			},
			want: State{Completed: []int{2, 1}, Available: []int{1}, StoryNode: 1},
		},
		{
			name: "legacy layout without available missions",
			values: map[string]string{
				KeyPoints:    "10",
				KeyCompleted: "[1]",
				KeyStoryNode: "2",
			},
			want: State{Points: 10, Completed: []int{1}, Available: []int{1}, StoryNode: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Decode(tt.values)); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeFromUsesBaseDefaults(t *testing.T) {
	base := InitialAt(5)

	if diff := cmp.Diff(base, DecodeFrom(nil, base)); diff != "" {
		t.Errorf("DecodeFrom(nil) mismatch (-want +got):\n%s", diff)
	}

	got := DecodeFrom(map[string]string{KeyStoryNode: "oops", KeyPoints: "20"}, base)
	want := InitialAt(5)
	want.Points = 20
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeFrom() mismatch (-want +got):\n%s", diff)
	}

	// The base is not aliased
	got.Available = append(got.Available, 9)
	if len(base.Available) != 1 {
		t.Errorf("base available missions changed: %v", base.Available)
	}
}
