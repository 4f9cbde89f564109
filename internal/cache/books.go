package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/xela07ax/librarium/internal/domain"
	"github.com/xela07ax/librarium/internal/infra"
	"go.uber.org/zap"
)

// BookCache — read-through кэш каталога поверх Redis.
// Все обращения идут через Circuit Breaker: лежащий Redis не должен
// добавлять латентность чтениям, сервис обязан жить и без кэша.
type BookCache struct {
	rdb    *redis.Client
	cb     *gobreaker.CircuitBreaker
	ttl    time.Duration
	logger *zap.Logger
}

func NewBookCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *BookCache {
	// Настройка предохранителя
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "book-cache",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Если более 5 ошибок подряд — открываемся (ходим мимо кэша)
			return counts.ConsecutiveFailures > 5
		},
	})

	return &BookCache{
		rdb:    rdb,
		cb:     cb,
		ttl:    ttl,
		logger: logger.Named("book-cache"),
	}
}

// GetBook возвращает книгу из кэша. Второй результат false —
// промах, отказ Redis или разомкнутый предохранитель.
func (c *BookCache) GetBook(ctx context.Context, id int64) (*domain.Book, bool) {
	data, ok := c.get(ctx, infra.BookKey(id))
	if !ok {
		return nil, false
	}
	var book domain.Book
	if err := json.Unmarshal(data, &book); err != nil {
		c.logger.Warn("corrupted cache entry", zap.Int64("book_id", id), zap.Error(err))
		return nil, false
	}
	return &book, true
}

func (c *BookCache) SetBook(ctx context.Context, book *domain.Book) {
	data, err := json.Marshal(book)
	if err != nil {
		return
	}
	c.set(ctx, infra.BookKey(book.ID), data)
}

func (c *BookCache) GetList(ctx context.Context) ([]*domain.Book, bool) {
	data, ok := c.get(ctx, infra.RedisKeyBookList)
	if !ok {
		return nil, false
	}
	var books []*domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		c.logger.Warn("corrupted cache entry", zap.String("key", infra.RedisKeyBookList), zap.Error(err))
		return nil, false
	}
	return books, true
}

func (c *BookCache) SetList(ctx context.Context, books []*domain.Book) {
	data, err := json.Marshal(books)
	if err != nil {
		return
	}
	c.set(ctx, infra.RedisKeyBookList, data)
}

// Invalidate сбрасывает книгу и общий список после любой записи в каталог.
func (c *BookCache) Invalidate(ctx context.Context, id int64) {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Del(ctx, infra.BookKey(id), infra.RedisKeyBookList).Err()
	})
	if err != nil {
		c.logger.Warn("cache invalidation skipped", zap.Int64("book_id", id), zap.Error(err))
	}
}

func (c *BookCache) get(ctx context.Context, key string) ([]byte, bool) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Промах — не ошибка, предохранитель не дергаем
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.logger.Warn("cache read skipped", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	data, _ := result.([]byte)
	if data == nil {
		return nil, false
	}
	return data, true
}

func (c *BookCache) set(ctx context.Context, key string, data []byte) {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		c.logger.Warn("cache write skipped", zap.String("key", key), zap.Error(err))
	}
}
