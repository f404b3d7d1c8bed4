package app

import (
	"context"
	"log"
	"sync"
	"time"

	"ai-quiz-room/internal/domain"
)

// QuestionBank samples distinct questions for one quiz cycle.
type QuestionBank interface {
	Sample(ctx context.Context, n int) ([]domain.Question, error)
}

// DefaultQuestionsPerCycle matches the min(5, pool size) sampling policy.
const DefaultQuestionsPerCycle = 5

// Durations holds per-stage countdowns in seconds. AutoRegistration is the
// longer window used when a cycle restarts on its own after results.
type Durations struct {
	Registration     int
	AutoRegistration int
	Preparation      int
	Quiz             int
	Pause            int
	Results          int
	Waiting          int
}

func DefaultDurations() Durations {
	return Durations{
		Registration:     60,
		AutoRegistration: 120,
		Preparation:      15,
		Quiz:             15,
		Pause:            3,
		Results:          10,
		Waiting:          15,
	}
}

// Scheduler drives the room through its stage cycle:
//
//	registration -> preparation -> [quiz -> pause]xN -> results -> waiting -> registration
//
// Exactly one run loop is live at a time; StartRegistration and
// StartNewCycle cancel the previous run and wait for it to finish before
// installing the replacement.
type Scheduler struct {
	room     *Room
	bank     QuestionBank
	d        Durations
	perCycle int
	tick     time.Duration
	observer func(domain.Stage, int)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(room *Room, bank QuestionBank, d Durations, perCycle int) *Scheduler {
	return NewSchedulerWithTick(room, bank, d, perCycle, time.Second, nil)
}

// NewSchedulerWithTick is test-only: a short tick compresses the cycle and
// the observer reports every stage entry.
func NewSchedulerWithTick(room *Room, bank QuestionBank, d Durations, perCycle int, tick time.Duration, observer func(domain.Stage, int)) *Scheduler {
	if perCycle <= 0 {
		perCycle = DefaultQuestionsPerCycle
	}
	return &Scheduler{
		room:     room,
		bank:     bank,
		d:        d,
		perCycle: perCycle,
		tick:     tick,
		observer: observer,
	}
}

// StartRegistration begins a cycle with the short registration window.
func (s *Scheduler) StartRegistration() {
	s.replace(s.d.Registration)
}

// StartNewCycle begins a cycle with the long registration window.
func (s *Scheduler) StartNewCycle() {
	s.replace(s.d.AutoRegistration)
}

// Stop cancels the running cycle and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) replace(opening int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go func() {
		defer close(done)
		s.run(ctx, opening)
	}()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

// step is one position of the state machine: the stage, the question index
// (quiz/pause only) and the countdown length.
type step struct {
	stage    domain.Stage
	question int
	seconds  int
}

// run is an explicit FSM loop rather than stage-to-stage calls, so a
// continuously cycling room never grows the stack.
func (s *Scheduler) run(ctx context.Context, opening int) {
	current := step{stage: domain.StageRegistration, seconds: opening}
	for {
		if !s.enter(ctx, current) {
			return
		}
		current = s.exit(current)
	}
}

// enter applies the stage's entry action and runs its countdown. Returns
// false when the run was cancelled.
func (s *Scheduler) enter(ctx context.Context, cur step) bool {
	switch cur.stage {
	case domain.StagePreparation:
		s.room.setStage(domain.StagePreparation, cur.seconds)
		questions, err := s.bank.Sample(ctx, s.perCycle)
		if err != nil {
			// Empty pool or backing-store trouble degrades to a
			// question-less cycle instead of aborting it.
			log.Printf("question sampling failed, continuing without questions: %v", err)
			questions = nil
		}
		s.room.installQuestions(questions)
	case domain.StageQuiz:
		s.room.startQuestion(cur.question, cur.seconds)
	case domain.StageResults:
		s.room.setStage(domain.StageResults, 0)
	case domain.StageWaiting:
		s.room.resetCycle()
		s.room.setStage(domain.StageWaiting, cur.seconds)
	default:
		s.room.setStage(cur.stage, cur.seconds)
	}
	if s.observer != nil {
		s.observer(cur.stage, cur.question)
	}

	for i := cur.seconds; i > 0; i-- {
		if !s.sleep(ctx) {
			return false
		}
		s.room.tick(i - 1)
	}
	return true
}

// exit performs the stage's exit action and picks the next step.
func (s *Scheduler) exit(cur step) step {
	switch cur.stage {
	case domain.StageRegistration:
		return step{stage: domain.StagePreparation, seconds: s.d.Preparation}
	case domain.StagePreparation:
		if s.room.questionCount() == 0 {
			return step{stage: domain.StageResults, seconds: s.d.Results}
		}
		return step{stage: domain.StageQuiz, question: 0, seconds: s.d.Quiz}
	case domain.StageQuiz:
		s.room.scoreCurrent()
		return step{stage: domain.StagePause, question: cur.question, seconds: s.d.Pause}
	case domain.StagePause:
		if cur.question+1 < s.room.questionCount() {
			return step{stage: domain.StageQuiz, question: cur.question + 1, seconds: s.d.Quiz}
		}
		return step{stage: domain.StageResults, seconds: s.d.Results}
	case domain.StageResults:
		return step{stage: domain.StageWaiting, seconds: s.d.Waiting}
	default: // waiting
		return step{stage: domain.StageRegistration, seconds: s.d.AutoRegistration}
	}
}

// sleep is the scheduler's only suspension point; cancellation is checked here.
func (s *Scheduler) sleep(ctx context.Context) bool {
	t := time.NewTimer(s.tick)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
