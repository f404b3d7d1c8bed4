package app

import "ai-quiz-room/internal/domain"

// Outcome is the per-user result of one scored question.
type Outcome struct {
	Correct bool
	Points  int
}

// Score computes the outcome for every registered user once a question's
// countdown reaches zero. A correct answer is worth the countdown value at
// submission time, so faster answers score higher. Users with no submission
// or a wrong option get zero. Pure over its inputs; the caller guarantees a
// single invocation per question so cumulative scores are never double-added.
func Score(question domain.Question, answers map[string]domain.Answer, users []string) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(users))
	for _, name := range users {
		answer, answered := answers[name]
		if answered && answer.Option == question.CorrectIndex {
			outcomes[name] = Outcome{Correct: true, Points: answer.Timer}
		} else {
			outcomes[name] = Outcome{}
		}
	}
	return outcomes
}
