package memory

import (
	"context"
	"testing"
	"time"

	"ai-quiz-room/internal/domain"
)

func TestSampleReturnsDistinctQuestions(t *testing.T) {
	bank := NewQuestionBank(NewStaticQuestionLoader(DefaultQuestionPool()), time.Minute)

	sample, err := bank.Sample(context.Background(), 5)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(sample))
	}
	seen := make(map[string]bool)
	for _, q := range sample {
		if seen[q.Text] {
			t.Fatalf("duplicate question %q in sample", q.Text)
		}
		seen[q.Text] = true
	}
}

func TestSampleClampsToPoolSize(t *testing.T) {
	pool := []domain.Question{
		{Text: "q0", Options: []string{"a"}, CorrectIndex: 0},
		{Text: "q1", Options: []string{"a"}, CorrectIndex: 0},
	}
	bank := NewQuestionBank(NewStaticQuestionLoader(pool), time.Minute)

	sample, err := bank.Sample(context.Background(), 5)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != 2 {
		t.Fatalf("expected whole pool of 2, got %d", len(sample))
	}
}

func TestBankCachesPool(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(DefaultQuestionPool()),
	}
	bank := NewQuestionBank(loader, time.Minute)

	if _, err := bank.Sample(context.Background(), 3); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if _, err := bank.Sample(context.Background(), 3); err != nil {
		t.Fatalf("sample 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one pool load, got %d", loader.calls)
	}
}

func TestMalformedQuestionsDroppedAtLoad(t *testing.T) {
	pool := []domain.Question{
		{Text: "fine", Options: []string{"a", "b"}, CorrectIndex: 1},
		{Text: "no options", Options: nil, CorrectIndex: 0},
		{Text: "bad index", Options: []string{"a"}, CorrectIndex: 3},
	}
	bank := NewQuestionBank(NewStaticQuestionLoader(pool), time.Minute)

	sample, err := bank.Sample(context.Background(), 5)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != 1 || sample[0].Text != "fine" {
		t.Fatalf("expected only the well-formed question, got %v", sample)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}
