package memory

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"ai-quiz-room/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the full question pool from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionBank caches the pool with a TTL and samples from it without
// replacement. Sampling is independent per call, so the pool is never
// exhausted across cycles.
type QuestionBank struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	pool      []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
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
	now := b.clock()

	b.mu.RLock()
	if b.pool != nil && b.expiresAt.After(now) {
		pool := b.pool
		b.mu.RUnlock()
		return pool, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do("pool", func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if b.pool != nil && b.expiresAt.After(now) {
			pool := b.pool
			b.mu.RUnlock()
			return pool, nil
		}
		b.mu.RUnlock()

		loaded, err := b.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		pool := filterValid(loaded)

		b.mu.Lock()
		b.pool = pool
		b.expiresAt = now.Add(b.ttlWithJitter())
		b.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// filterValid drops malformed entries (no options or correct index out of
// range) at load time so scoring never sees them.
func filterValid(questions []domain.Question) []domain.Question {
	valid := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if !q.Valid() {
			log.Printf("dropping malformed question %q", q.Text)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves a fixed pool (demos and tests).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return l.questions, nil
}

// DefaultQuestionPool is the built-in pool used when no Postgres backend is
// configured.
func DefaultQuestionPool() []domain.Question {
	return []domain.Question{
		{Text: "Что такое Вайбкодинг?", Options: []string{"Метод обучения", "Язык программирования", "Стиль код-ревью", "Техника командной работы"}, CorrectIndex: 0, Theme: "Вайбкодинг"},
		{Text: "Что такое AI?", Options: []string{"Искусственный интеллект", "Автоматизация интерфейса", "Анализ изображений", "Архитектурный индекс"}, CorrectIndex: 0, Theme: "AI"},
		{Text: "Что делает ИИ-агент?", Options: []string{"Выполняет задачи самостоятельно", "Только обучается", "Только хранит данные", "Только рисует"}, CorrectIndex: 0, Theme: "ИИ-агенты"},
		{Text: "Какой язык программирования используется в Вайбкодинге?", Options: []string{"Python", "JavaScript", "Java", "C++"}, CorrectIndex: 0, Theme: "Вайбкодинг"},
		{Text: "Что такое машинное обучение?", Options: []string{"Подмножество AI", "База данных", "Операционная система", "Сеть"}, CorrectIndex: 0, Theme: "AI"},
		{Text: "Как ИИ-агент принимает решения?", Options: []string{"На основе алгоритмов", "Случайно", "По расписанию", "Только по команде"}, CorrectIndex: 0, Theme: "ИИ-агенты"},
		{Text: "В чем преимущество Вайбкодинга?", Options: []string{"Быстрая разработка", "Низкая стоимость", "Простота обучения", "Все вышеперечисленное"}, CorrectIndex: 3, Theme: "Вайбкодинг"},
		{Text: "Что такое нейронная сеть?", Options: []string{"Модель AI", "Интернет-сеть", "База данных", "Программа"}, CorrectIndex: 0, Theme: "AI"},
		{Text: "Может ли ИИ-агент обучаться?", Options: []string{"Да, на основе данных", "Нет, никогда", "Только при перезапуске", "Только в лаборатории"}, CorrectIndex: 0, Theme: "ИИ-агенты"},
		{Text: "Какой принцип лежит в основе Вайбкодинга?", Options: []string{"Простота и скорость", "Сложность и точность", "Дороговизна", "Медленная разработка"}, CorrectIndex: 0, Theme: "Вайбкодинг"},
	}
}
