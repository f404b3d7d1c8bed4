package app

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"ai-quiz-room/internal/domain"
)

// MaxUsers caps registrations per cycle.
const MaxUsers = 100

// namePattern allows latin, cyrillic, digits, spaces and periods.
var namePattern = regexp.MustCompile(`^[a-zA-Zа-яА-Я0-9 .]+$`)

// Room is the single shared record of truth for the quiz room. One RWMutex
// guards every field so readers always observe a consistent stage/timer pair.
// The scheduler is the only writer for stage, timer, questions and scores;
// HTTP handlers only insert registrations and answers.
type Room struct {
	mu        sync.RWMutex
	stage     domain.Stage
	timer     int
	users     map[string]*domain.User
	order     []string // registration order, fixes leaderboard ties
	questions []domain.Question
	current   int
	answers   map[string]domain.Answer
}

func NewRoom() *Room {
	return &Room{
		stage:   domain.StageWaiting,
		users:   make(map[string]*domain.User),
		answers: make(map[string]domain.Answer),
	}
}

// Register adds a user while registration is open. Returns the trimmed name
// actually stored, for token binding.
func (r *Room) Register(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stage != domain.StageRegistration || r.timer <= 0 {
		return "", domain.ErrRegistrationClosed
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || !namePattern.MatchString(trimmed) {
		return "", domain.ErrInvalidName
	}
	if _, ok := r.users[trimmed]; ok {
		return "", domain.ErrNameTaken
	}
	if len(r.users) >= MaxUsers {
		return "", domain.ErrRoomFull
	}
	r.users[trimmed] = &domain.User{Name: trimmed}
	r.order = append(r.order, trimmed)
	return trimmed, nil
}

// SubmitAnswer records one answer per user per question, stamped with the
// countdown value at the moment of submission. Submissions racing the
// scoring pass serialize on the room mutex: whoever loses the race to a
// closed question gets ErrQuestionClosed.
func (r *Room) SubmitAnswer(name string, option int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stage != domain.StageQuiz || r.timer <= 0 {
		return domain.ErrQuestionClosed
	}
	if _, ok := r.users[name]; !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := r.answers[name]; ok {
		return domain.ErrAlreadyAnswered
	}
	r.answers[name] = domain.Answer{Option: option, Timer: r.timer}
	return nil
}

// Snapshot returns the read-only projection served over REST and the live feed.
func (r *Room) Snapshot() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, len(r.order))
	copy(users, r.order)
	return domain.Snapshot{
		Stage:           r.stage,
		Timer:           r.timer,
		Users:           users,
		CurrentQuestion: r.current,
		QuestionCount:   len(r.questions),
	}
}

// ActiveQuestion returns the question on screen, or false outside the quiz
// stage or when the index is out of range.
func (r *Room) ActiveQuestion() (domain.ActiveQuestion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stage != domain.StageQuiz || r.current < 0 || r.current >= len(r.questions) {
		return domain.ActiveQuestion{}, false
	}
	q := r.questions[r.current]
	return domain.ActiveQuestion{
		Text:    q.Text,
		Options: q.Options,
		Theme:   q.Theme,
		Timer:   r.timer,
	}, true
}

// Leaderboard sorts users by score descending; equal scores keep
// registration order.
func (r *Room) Leaderboard() []domain.LeaderboardEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, domain.LeaderboardEntry{Name: name, Score: r.users[name].Score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// UserInfo returns a copy of the user's record.
func (r *Room) UserInfo(name string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[name]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	out := *user
	if user.LastAnswerCorrect != nil {
		correct := *user.LastAnswerCorrect
		out.LastAnswerCorrect = &correct
	}
	return out, nil
}

// setStage enters a stage and resets the countdown. Scheduler only.
func (r *Room) setStage(stage domain.Stage, timer int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = stage
	r.timer = timer
}

// tick lowers the countdown to v. Scheduler only.
func (r *Room) tick(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v < r.timer {
		r.timer = v
	}
}

// installQuestions fixes the question set for one cycle. Scheduler only.
func (r *Room) installQuestions(questions []domain.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = questions
	r.current = 0
}

func (r *Room) questionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.questions)
}

// startQuestion enters the quiz stage for question idx and opens a fresh
// answer window. Scheduler only.
func (r *Room) startQuestion(idx, timer int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = domain.StageQuiz
	r.timer = timer
	r.current = idx
	r.answers = make(map[string]domain.Answer)
}

// scoreCurrent applies the score engine to the just-finished question and
// closes its answer window. Scheduler only, exactly once per question.
func (r *Room) scoreCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current < 0 || r.current >= len(r.questions) {
		return
	}
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	outcomes := Score(r.questions[r.current], r.answers, names)
	for name, outcome := range outcomes {
		user := r.users[name]
		correct := outcome.Correct
		user.LastAnswerCorrect = &correct
		user.LastScore = outcome.Points
		user.Score += outcome.Points
	}
	r.answers = make(map[string]domain.Answer)
}

// resetCycle wipes all per-cycle data. Scheduler only, on the way to Waiting.
func (r *Room) resetCycle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]*domain.User)
	r.order = nil
	r.answers = make(map[string]domain.Answer)
	r.questions = nil
	r.current = 0
}
