package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-quiz-room/internal/domain"
	"ai-quiz-room/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionBankCachesPoolInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader(memory.DefaultQuestionPool()),
	}
	bank := NewQuestionBank(client, loader, time.Minute)

	sample, err := bank.Sample(context.Background(), 3)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(sample) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(sample))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:questions:pool") {
		t.Fatalf("expected pool cached in redis")
	}

	// Second call should hit the redis cache, loader not incremented.
	if _, err := bank.Sample(context.Background(), 3); err != nil {
		t.Fatalf("sample 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestSampleServedFromCacheWhenLoaderDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	warm := NewQuestionBank(client, memory.NewStaticQuestionLoader(memory.DefaultQuestionPool()), time.Minute)
	if _, err := warm.Sample(context.Background(), 1); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	cold := NewQuestionBank(client, &failingLoader{}, time.Minute)
	sample, err := cold.Sample(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected cached pool to serve, got %v", err)
	}
	if len(sample) != 5 {
		t.Fatalf("expected 5 questions from cache, got %d", len(sample))
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx)
}

type failingLoader struct{}

func (l *failingLoader) LoadQuestions(context.Context) ([]domain.Question, error) {
	return nil, errors.New("backing store down")
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
