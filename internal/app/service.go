package app

import (
	"ai-quiz-room/internal/domain"
)

// RoomService is the narrow interface the transport layer talks to: room
// reads and user actions on one side, cycle control on the other.
type RoomService struct {
	room      *Room
	scheduler *Scheduler
}

func NewRoomService(bank QuestionBank, d Durations, perCycle int) *RoomService {
	room := NewRoom()
	return &RoomService{
		room:      room,
		scheduler: NewScheduler(room, bank, d, perCycle),
	}
}

// NewRoomServiceWithScheduler is exported for tests that need a fast tick.
func NewRoomServiceWithScheduler(room *Room, scheduler *Scheduler) *RoomService {
	return &RoomService{room: room, scheduler: scheduler}
}

// StartRegistration (re)starts the cycle with the short registration window.
func (s *RoomService) StartRegistration() {
	s.scheduler.StartRegistration()
}

// StartNewCycle (re)starts the cycle with the long registration window.
func (s *RoomService) StartNewCycle() {
	s.scheduler.StartNewCycle()
}

// Stop halts the running cycle; room state stays as-is.
func (s *RoomService) Stop() {
	s.scheduler.Stop()
}

func (s *RoomService) Snapshot() domain.Snapshot {
	return s.room.Snapshot()
}

func (s *RoomService) Register(name string) (string, error) {
	return s.room.Register(name)
}

func (s *RoomService) SubmitAnswer(name string, option int) error {
	return s.room.SubmitAnswer(name, option)
}

func (s *RoomService) ActiveQuestion() (domain.ActiveQuestion, bool) {
	return s.room.ActiveQuestion()
}

func (s *RoomService) Leaderboard() []domain.LeaderboardEntry {
	return s.room.Leaderboard()
}

func (s *RoomService) UserInfo(name string) (domain.User, error) {
	return s.room.UserInfo(name)
}
