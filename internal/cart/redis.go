package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

// RedisStore keeps a cart in two hashes: <key>:items holds the line as JSON
// and <key>:qty holds the counts, so concurrent adds never lose an increment.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore stores the cart under key. A positive ttl expires an idle cart.
func NewRedisStore(client redis.UniversalClient, key string, ttl time.Duration) *RedisStore {
	if key == "" {
		key = "gryadka:cart:" + DefaultKey
	}

	return &RedisStore{client: client, key: key, ttl: ttl, now: time.Now}
}

func (s *RedisStore) itemsKey() string { return s.key + ":items" }
func (s *RedisStore) qtyKey() string   { return s.key + ":qty" }

func field(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

func (s *RedisStore) Items(ctx context.Context) ([]Item, error) {
	var (
		linesCmd *redis.MapStringStringCmd
		qtyCmd   *redis.MapStringStringCmd
	)

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		linesCmd = pipe.HGetAll(ctx, s.itemsKey())
		qtyCmd = pipe.HGetAll(ctx, s.qtyKey())

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis read cart: %w", err)
	}

	lines := linesCmd.Val()
	qty := qtyCmd.Val()

	items := make([]Item, 0, len(lines))

	for id, raw := range lines {
		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			logger.Log.Warnf("Skipping unreadable cart line %s: %v", id, err)

			continue
		}

		count, err := strconv.Atoi(qty[id])
		if err != nil || count <= 0 {
			continue
		}

		item.Count = count
		items = append(items, item)
	}

	sortByAdded(items)

	return items, nil
}

func (s *RedisStore) Add(ctx context.Context, item Item) error {
	item, err := prepare(item, s.now())
	if err != nil {
		return err
	}

	count := item.Count
	item.Count = 0

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal cart item: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, s.itemsKey(), field(item.ProductID), data)
		pipe.HIncrBy(ctx, s.qtyKey(), field(item.ProductID), int64(count))
		s.touch(ctx, pipe)

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis add cart item %d: %w", item.ProductID, err)
	}

	return nil
}

func (s *RedisStore) Remove(ctx context.Context, productID int64) error {
	var removed *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, s.itemsKey(), field(productID))
		pipe.HDel(ctx, s.qtyKey(), field(productID))

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove cart item %d: %w", productID, err)
	}

	if removed.Val() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.itemsKey(), s.qtyKey()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis clear cart: %w", err)
	}

	return nil
}

func (s *RedisStore) touch(ctx context.Context, pipe redis.Pipeliner) {
	if s.ttl <= 0 {
		return
	}

	pipe.Expire(ctx, s.itemsKey(), s.ttl)
	pipe.Expire(ctx, s.qtyKey(), s.ttl)
}
