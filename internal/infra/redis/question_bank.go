package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"strconv"
	"time"

	"ai-quiz-room/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const poolKey = "quiz:questions:pool"

// QuestionLoader fetches the full question pool from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionBank caches the question pool in Redis (one hash, a field per
// question) and falls back to a loader on cache miss. Sampling happens
// locally against the cached pool.
type QuestionBank struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample returns min(n, pool size) distinct questions drawn uniformly at
// random.
func (b *QuestionBank) Sample(ctx context.Context, n int) ([]domain.Question, error) {
	pool, err := b.loadPool(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(pool) {
		n = len(pool)
	}
	picked := make([]domain.Question, 0, n)
	for _, i := range b.rnd.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked, nil
}

func (b *QuestionBank) loadPool(ctx context.Context) ([]domain.Question, error) {
	if cached, err := b.client.HGetAll(ctx, poolKey).Result(); err == nil && len(cached) > 0 {
		return decodePool(cached), nil
	}

	result, err, _ := b.sf.Do(poolKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := b.client.HGetAll(ctx, poolKey).Result(); err == nil && len(cached) > 0 {
			return decodePool(cached), nil
		}

		loaded, err := b.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		pool := make([]domain.Question, 0, len(loaded))
		for _, q := range loaded {
			if q.Valid() {
				pool = append(pool, q)
			}
		}

		pipe := b.client.Pipeline()
		for i, q := range pool {
			raw, err := json.Marshal(q)
			if err != nil {
				continue
			}
			pipe.HSet(ctx, poolKey, strconv.Itoa(i), raw)
		}
		if ttl := b.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, poolKey, ttl)
		}
		// best-effort cache fill; the loaded pool is authoritative
		_, _ = pipe.Exec(ctx)

		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func decodePool(cached map[string]string) []domain.Question {
	pool := make([]domain.Question, 0, len(cached))
	for field, raw := range cached {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			log.Printf("skipping undecodable cached question %s: %v", field, err)
			continue
		}
		if q.Valid() {
			pool = append(pool, q)
		}
	}
	return pool
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
