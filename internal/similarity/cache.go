package similarity

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// defaultCapacity bounds the number of cached vectors when the caller
	// does not configure one.
	defaultCapacity = 1000

	// maxKeyRunes truncates normalized text before encoding to bound the
	// cost of a single encoder call.
	maxKeyRunes = 512
)

// ErrNoEncoder is returned by GetOrCompute when the cache was built without
// an encoder. Callers treat it like any other compute failure and fall back
// to a neutral similarity.
var ErrNoEncoder = errors.New("encoder is not configured")

// Encoder turns text into an embedding vector. The similarity cache is the
// sole caller.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Cache memoizes encoder calls keyed by normalized text. Lookups for a key
// with a computation already in flight block on that computation instead of
// encoding the same text twice. Entries are evicted least-recently-used once
// capacity is exceeded and, when a ttl is configured, on expiry.
type Cache struct {
	encoder  Encoder
	capacity int
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // front is most recently used
}

type entry struct {
	key        string
	vector     []float32
	insertedAt time.Time
	elem       *list.Element

	// done is closed when the in-flight computation finishes; err is only
	// read after done is closed.
	done chan struct{}
	err  error
}

// Config carries the cache tuning knobs supplied by the config layer.
type Config struct {
	Capacity int
	TTL      time.Duration
}

// New creates a cache around the given encoder. A nil encoder is allowed;
// every miss then fails with ErrNoEncoder and callers degrade to neutral
// similarity.
func New(encoder Encoder, cfg Config, logger *zap.Logger) *Cache {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{
		encoder:  encoder,
		capacity: capacity,
		ttl:      cfg.TTL,
		now:      time.Now,
		logger:   logger,
		entries:  make(map[string]*entry),
		order:    list.New(),
	}
}

// NormalizeKey lowercases the text, collapses runs of whitespace into single
// spaces and truncates the result, so semantically identical text always maps
// to the same cache entry.
func NormalizeKey(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	key := strings.Join(fields, " ")

	runes := []rune(key)
	if len(runes) > maxKeyRunes {
		key = string(runes[:maxKeyRunes])
	}
	return key
}

// GetOrCompute returns the vector for the normalized text, encoding it at
// most once per key regardless of how many callers ask concurrently. Failed
// computations are not stored; every waiter of the failed flight receives the
// error and the next caller triggers a fresh computation.
func (c *Cache) GetOrCompute(ctx context.Context, text string) ([]float32, error) {
	key := NormalizeKey(text)
	if key == "" {
		return nil, errors.New("empty text after normalization")
	}

	for {
		c.mu.Lock()

		if e, ok := c.entries[key]; ok {
			select {
			case <-e.done:
				// Completed entry; honor ttl before serving it.
				if c.ttl > 0 && c.now().Sub(e.insertedAt) > c.ttl {
					c.remove(e)
					c.mu.Unlock()
					continue
				}
				c.order.MoveToFront(e.elem)
				c.mu.Unlock()
				return e.vector, nil
			default:
				// Computation in flight; wait for it without holding the lock.
				c.mu.Unlock()
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-e.done:
				}
				if e.err != nil {
					return nil, e.err
				}
				return e.vector, nil
			}
		}

		e := &entry{key: key, done: make(chan struct{})}
		c.entries[key] = e
		c.mu.Unlock()

		vector, err := c.compute(ctx, key)

		c.mu.Lock()
		if err != nil {
			e.err = err
			delete(c.entries, key)
			close(e.done)
			c.mu.Unlock()
			return nil, err
		}

		e.vector = vector
		e.insertedAt = c.now()
		e.elem = c.order.PushFront(e)
		close(e.done)
		c.evictLocked()
		c.mu.Unlock()

		return vector, nil
	}
}

// Len returns the number of completed entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) compute(ctx context.Context, key string) ([]float32, error) {
	if c.encoder == nil {
		return nil, ErrNoEncoder
	}

	vector, err := c.encoder.Encode(ctx, key)
	if err != nil {
		c.logger.Debug("similarity encode failed", zap.Error(err))
		return nil, fmt.Errorf("encode: %w", err)
	}
	if len(vector) == 0 {
		return nil, errors.New("encoder returned empty vector")
	}
	return vector, nil
}

// evictLocked drops least-recently-used completed entries until the cache is
// within capacity. In-flight entries are not in the order list and are never
// evicted.
func (c *Cache) evictLocked() {
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.remove(oldest.Value.(*entry))
	}
}

func (c *Cache) remove(e *entry) {
	delete(c.entries, e.key)
	if e.elem != nil {
		c.order.Remove(e.elem)
		e.elem = nil
	}
}
