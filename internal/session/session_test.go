package session

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terra-clan/hero-quest/internal/models"
)

func ptr(v int) *int { return &v }

func TestInitial(t *testing.T) {
	want := State{Completed: []int{}, Available: []int{1}, StoryNode: 1}
	if diff := cmp.Diff(want, Initial()); diff != "" {
		t.Errorf("Initial() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteMissionIsIdempotent(t *testing.T) {
	s := New(Initial())

	if !s.CompleteMission(1, 10) {
		t.Fatal("expected first completion to be accepted")
	}
	if s.CompleteMission(1, 10) {
		t.Fatal("expected second completion to be rejected")
	}

	got := s.State()
	if got.Points != 10 {
		t.Errorf("expected 10 points, got %d", got.Points)
	}
	if diff := cmp.Diff([]int{1}, got.Completed); diff != "" {
		t.Errorf("completed mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteQuizKeepsPoints(t *testing.T) {
	s := New(State{Points: 40})
	s.CompleteQuiz("rebel")

	got := s.State()
	if got.Archetype != "rebel" || got.Points != 40 {
		t.Errorf("unexpected state %+v", got)
	}
}

func TestProgressStory(t *testing.T) {
	s := New(Initial())

	s.ProgressStory(ptr(10), nil)
	s.ProgressStory(nil, ptr(3))
	s.ProgressStory(ptr(5), ptr(3))
	s.ProgressStory(nil, nil)

	got := s.State()
	want := State{Points: 15, Completed: []int{}, Available: []int{1, 3}, StoryNode: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEffectIgnoresArchetype(t *testing.T) {
	s := New(Initial())
	s.CompleteQuiz("warrior")
	s.ApplyEffect(&models.Effect{Points: 20, Archetype: "mentor", MissionUnlock: 6})
	s.ApplyEffect(nil)

	got := s.State()
	if got.Archetype != "warrior" {
		t.Errorf("archetype changed to %q", got.Archetype)
	}
	if got.Points != 20 || !got.IsAvailable(6) {
		t.Errorf("unexpected state %+v", got)
	}
}

func TestReset(t *testing.T) {
	s := New(Initial())
	s.CompleteQuiz("explorer")
	s.CompleteMission(1, 10)
	s.ProgressStory(ptr(100), ptr(4))
	s.MoveTo(7)

	s.Reset()
	if diff := cmp.Diff(Initial(), s.State()); diff != "" {
		t.Errorf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestStateReturnsCopy(t *testing.T) {
	s := New(Initial())
	st := s.State()
	st.Available[0] = 99

	if s.State().Available[0] != 1 {
		t.Error("mutating a returned state leaked into the session")
	}
}

func TestPointsNeverDecrease(t *testing.T) {
	s := New(Initial())
	last := 0
	for i := 1; i <= 20; i++ {
		s.CompleteMission(i%5, i)
		s.ProgressStory(ptr(i%3), ptr(i%4))
		if p := s.State().Points; p < last {
			t.Fatalf("points decreased from %d to %d", last, p)
		} else {
			last = p
		}
	}
}
