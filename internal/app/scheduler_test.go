package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-quiz-room/internal/domain"
)

type stubBank struct {
	questions []domain.Question
	err       error
}

func (b *stubBank) Sample(_ context.Context, n int) ([]domain.Question, error) {
	if b.err != nil {
		return nil, b.err
	}
	if n > len(b.questions) {
		n = len(b.questions)
	}
	return b.questions[:n], nil
}

type stageEntry struct {
	stage    domain.Stage
	question int
}

// recordEntries drops entries once the buffer is full, so a forever-cycling
// scheduler can never block on the test observer.
func recordEntries(entries chan stageEntry) func(domain.Stage, int) {
	return func(stage domain.Stage, question int) {
		select {
		case entries <- stageEntry{stage, question}:
		default:
		}
	}
}

func collectEntries(t *testing.T, entries <-chan stageEntry, n int) []stageEntry {
	t.Helper()
	var got []stageEntry
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case e := <-entries:
			got = append(got, e)
		case <-deadline:
			t.Fatalf("timed out after %d stage entries: %v", len(got), got)
		}
	}
	return got
}

func fastDurations() Durations {
	return Durations{
		Registration:     2,
		AutoRegistration: 3,
		Preparation:      1,
		Quiz:             1,
		Pause:            1,
		Results:          1,
		Waiting:          1,
	}
}

func TestSchedulerVisitsFullCycle(t *testing.T) {
	room := NewRoom()
	bank := &stubBank{questions: []domain.Question{
		{Text: "q0", Options: []string{"a", "b"}, CorrectIndex: 0},
		{Text: "q1", Options: []string{"a", "b"}, CorrectIndex: 1},
	}}
	entries := make(chan stageEntry, 64)
	sched := NewSchedulerWithTick(room, bank, fastDurations(), 2, time.Millisecond, recordEntries(entries))

	sched.StartRegistration()
	defer sched.Stop()

	got := collectEntries(t, entries, 9)
	want := []stageEntry{
		{domain.StageRegistration, 0},
		{domain.StagePreparation, 0},
		{domain.StageQuiz, 0},
		{domain.StagePause, 0},
		{domain.StageQuiz, 1},
		{domain.StagePause, 1},
		{domain.StageResults, 0},
		{domain.StageWaiting, 0},
		{domain.StageRegistration, 0},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d: expected %+v, got %+v (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestSchedulerResetsRoomBeforeWaiting(t *testing.T) {
	room := NewRoom()
	bank := &stubBank{questions: []domain.Question{{Text: "q", Options: []string{"a"}, CorrectIndex: 0}}}
	entries := make(chan stageEntry, 64)
	d := fastDurations()
	d.Registration = 60 // wide enough to register mid-countdown
	d.Waiting = 60      // wide enough to inspect the wiped room
	sched := NewSchedulerWithTick(room, bank, d, 1, time.Millisecond, recordEntries(entries))

	sched.StartRegistration()
	defer sched.Stop()

	got := collectEntries(t, entries, 1)
	if got[0].stage != domain.StageRegistration {
		t.Fatalf("expected registration first, got %v", got[0])
	}
	if _, err := room.Register("Alice"); err != nil {
		t.Fatalf("register during registration: %v", err)
	}

	rest := collectEntries(t, entries, 5)
	if last := rest[len(rest)-1]; last.stage != domain.StageWaiting {
		t.Fatalf("expected waiting as fifth entry, got %v (full: %v)", last, rest)
	}
	snap := room.Snapshot()
	if len(snap.Users) != 0 || snap.QuestionCount != 0 {
		t.Fatalf("expected wiped room entering waiting, got %+v", snap)
	}
}

func TestSchedulerDegradesOnEmptyPool(t *testing.T) {
	room := NewRoom()
	bank := &stubBank{err: errors.New("pool unavailable")}
	entries := make(chan stageEntry, 64)
	sched := NewSchedulerWithTick(room, bank, fastDurations(), 5, time.Millisecond, recordEntries(entries))

	sched.StartRegistration()
	defer sched.Stop()

	got := collectEntries(t, entries, 4)
	want := []domain.Stage{domain.StageRegistration, domain.StagePreparation, domain.StageResults, domain.StageWaiting}
	for i, stage := range want {
		if got[i].stage != stage {
			t.Fatalf("stage %d: expected %s, got %s (full: %v)", i, stage, got[i].stage, got)
		}
	}
}

func TestStartNewCycleReplacesRunningScheduler(t *testing.T) {
	room := NewRoom()
	bank := &stubBank{}
	entries := make(chan stageEntry, 64)
	// A one-hour tick parks the run loop in its first countdown sleep, so
	// every stage entry seen below comes from an explicit (re)start.
	sched := NewSchedulerWithTick(room, bank, fastDurations(), 5, time.Hour, recordEntries(entries))

	sched.StartRegistration()
	collectEntries(t, entries, 1)
	if snap := room.Snapshot(); snap.Timer != 2 {
		t.Fatalf("expected short registration countdown, got %d", snap.Timer)
	}

	sched.StartNewCycle()
	collectEntries(t, entries, 1)
	if snap := room.Snapshot(); snap.Timer != 3 {
		t.Fatalf("expected long registration countdown after restart, got %d", snap.Timer)
	}

	sched.Stop()
	select {
	case e := <-entries:
		t.Fatalf("no scheduler should be alive after Stop, saw %v", e)
	case <-time.After(50 * time.Millisecond):
	}
}
