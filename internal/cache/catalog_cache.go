package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

const (
	catalogKey    = "catalog:preview"
	generationKey = "catalog:generation"
)

// CatalogCache keeps the public course catalog in Redis.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache builds the cache. A nil client or non-positive ttl disables it.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

type cachedCourse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached catalog. ok is false on a miss.
func (c *CatalogCache) Get(ctx context.Context) (courses []domain.Course, ok bool, err error) {
	if !c.enabled() {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached []cachedCourse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, err
	}
	courses = make([]domain.Course, 0, len(cached))
	for _, cc := range cached {
		courses = append(courses, domain.Course(cc))
	}
	return courses, true, nil
}

// Generation returns the invalidation counter. Read it before loading the
// catalog from the store and hand it to Set.
func (c *CatalogCache) Generation(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	return readGeneration(ctx, c.client)
}

// Set stores the catalog with the configured ttl unless the cache was
// invalidated after gen was read. stored reports whether the write happened.
func (c *CatalogCache) Set(ctx context.Context, gen int64, courses []domain.Course) (stored bool, err error) {
	if !c.enabled() {
		return false, nil
	}
	cached := make([]cachedCourse, 0, len(courses))
	for _, course := range courses {
		cached = append(cached, cachedCourse(course))
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return false, err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, catalogKey, raw, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		// an invalidation landed between WATCH and EXEC
		return false, nil
	}
	return stored, err
}

// Invalidate drops the cached catalog and bumps the generation so in-flight
// loads started before this call do not write back.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
