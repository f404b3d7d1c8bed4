package domain

// Stage identifies where the room is in its cycle.
type Stage string

const (
	StageRegistration Stage = "registration"
	StagePreparation  Stage = "preparation"
	StageQuiz         Stage = "quiz"
	StagePause        Stage = "pause"
	StageResults      Stage = "results"
	StageWaiting      Stage = "waiting"
)

// User is a registered participant. Name is the identity key; Score only
// ever grows until the cycle reset wipes the user wholesale.
type User struct {
	Name              string `json:"name"`
	Score             int    `json:"score"`
	LastAnswerCorrect *bool  `json:"lastAnswerCorrect"` // nil until the user's first scored question
	LastScore         int    `json:"lastScore"`
}

// Question is an MCQ with a zero-based correct option. Immutable once
// sampled into a cycle.
type Question struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Theme        string   `json:"theme"`
}

// Valid reports whether the question can be asked and scored at all.
// Malformed entries are filtered out at pool load, not at scoring time.
func (q Question) Valid() bool {
	return len(q.Options) > 0 && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// Answer records a user's pick and the countdown value at submission.
// The countdown value doubles as the awarded score when correct.
type Answer struct {
	Option int `json:"option"`
	Timer  int `json:"timer"`
}

// Snapshot is the read-only projection pushed to REST and WebSocket clients.
type Snapshot struct {
	Stage           Stage    `json:"stage"`
	Timer           int      `json:"timer"`
	Users           []string `json:"users"`
	CurrentQuestion int      `json:"currentQuestion"`
	QuestionCount   int      `json:"questionCount"`
}

// ActiveQuestion is the client view of the question on screen; the correct
// index is deliberately absent.
type ActiveQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Theme   string   `json:"theme"`
	Timer   int      `json:"timer"`
}

// LeaderboardEntry is one row of the score table.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
