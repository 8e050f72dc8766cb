package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisStore wraps the redis client with the handful of volatile-state
// concerns the platform keeps out of postgres: session tokens, per-user
// post read status, presence and stream viewer counts, plus the
// trending leaderboard the worker maintains.
type RedisStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

const (
	// Redis only has string type, there is no boolean or int, so we use "1" to represent true
	RedisTrue  = "1"
	RedisFalse = "0"

	sessionKeyPrefix  = "session"
	presenceKeyPrefix = "presence"
	viewersKeyPrefix  = "stream_viewers"
	trendingKey       = "trending_posts"

	// PresenceTTL is how long a presence mark survives without a
	// heartbeat. Connected clients refresh well within it.
	PresenceTTL = 60 * time.Second
)

var ctx = context.Background()

func GetRedisStore() (*RedisStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fail to connect to redis")
	}
	return &RedisStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) MustEncodePostKey(userId string, postId string) string {
	if !r.ValidateId(userId) || !r.ValidateId(postId) {
		panic(fmt.Errorf("invalid userId or postId with delimiter: %s, %s, %s", userId, postId, r.delimiter))
	}
	return fmt.Sprintf("%s%s%s", userId, r.delimiter, postId)
}

// === Session tokens ===

// CreateSession stores an opaque token -> userId mapping with the
// provided TTL.
func (r *RedisStore) CreateSession(token string, userId string, ttl time.Duration) error {
	return errors.Wrap(
		r.inner.Set(ctx, sessionKeyPrefix+r.keyParser.delimiter+token, userId, ttl).Err(),
		"fail to create session")
}

// GetSession resolves a token to its user id, refreshing the TTL on
// hit so active sessions stay alive. Returns empty string on unknown
// or expired tokens.
func (r *RedisStore) GetSession(token string, ttl time.Duration) (string, error) {
	key := sessionKeyPrefix + r.keyParser.delimiter + token
	userId, err := r.inner.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "fail to read session")
	}
	r.inner.Expire(ctx, key, ttl)
	return userId, nil
}

// RevokeSession drops the token, ok on non-existing token.
func (r *RedisStore) RevokeSession(token string) error {
	return errors.Wrap(
		r.inner.Del(ctx, sessionKeyPrefix+r.keyParser.delimiter+token).Err(),
		"fail to revoke session")
}

// === Post read status ===

func (r *RedisStore) GetItemsReadStatus(itemNodeIds []string, userId string) ([]bool, error) {
	if len(itemNodeIds) == 0 {
		return []bool{}, nil
	}

	postKeys := []string{}

	for _, pid := range itemNodeIds {
		postKeys = append(postKeys, r.keyParser.MustEncodePostKey(userId, pid))
	}

	res, err := r.inner.MGet(ctx, postKeys...).Result()
	status := []bool{}
	for _, v := range res {
		if v == nil {
			status = append(status, false)
			continue
		}

		if v == RedisTrue {
			status = append(status, true)
			continue
		}
		status = append(status, false)
	}
	return status, err
}

func (r *RedisStore) SetItemsReadStatus(itemNodeIds []string, userId string, read bool) error {
	if len(itemNodeIds) == 0 {
		return nil
	}

	keyValues := []interface{}{}
	val := RedisFalse
	if read {
		val = RedisTrue
	}
	for _, pid := range itemNodeIds {
		keyValues = append(keyValues, r.keyParser.MustEncodePostKey(userId, pid))
		keyValues = append(keyValues, val)
	}
	return r.inner.MSet(ctx, keyValues...).Err()
}

// === Presence ===

// MarkOnline refreshes the user's presence mark. Called on connect and
// on every heartbeat while a websocket connection is alive.
func (r *RedisStore) MarkOnline(userId string) error {
	key := presenceKeyPrefix + r.keyParser.delimiter + userId
	return r.inner.Set(ctx, key, RedisTrue, PresenceTTL).Err()
}

// GetOnlineStatus reports presence for a batch of users.
func (r *RedisStore) GetOnlineStatus(userIds []string) ([]bool, error) {
	if len(userIds) == 0 {
		return []bool{}, nil
	}

	keys := []string{}
	for _, uid := range userIds {
		keys = append(keys, presenceKeyPrefix+r.keyParser.delimiter+uid)
	}
	res, err := r.inner.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fail to read presence")
	}
	status := []bool{}
	for _, v := range res {
		status = append(status, v != nil)
	}
	return status, nil
}

// === Stream viewers ===

func (r *RedisStore) AddStreamViewer(streamId string) (int64, error) {
	return r.inner.Incr(ctx, viewersKeyPrefix+r.keyParser.delimiter+streamId).Result()
}

func (r *RedisStore) RemoveStreamViewer(streamId string) (int64, error) {
	key := viewersKeyPrefix + r.keyParser.delimiter + streamId
	count, err := r.inner.Decr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// Leaves can race with resets, clamp at zero instead of going negative.
	if count < 0 {
		r.inner.Set(ctx, key, 0, 0)
		count = 0
	}
	return count, nil
}

func (r *RedisStore) GetStreamViewerCount(streamId string) (int64, error) {
	res, err := r.inner.Get(ctx, viewersKeyPrefix+r.keyParser.delimiter+streamId).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return res, err
}

func (r *RedisStore) ResetStreamViewerCount(streamId string) error {
	return r.inner.Del(ctx, viewersKeyPrefix+r.keyParser.delimiter+streamId).Err()
}

// === Trending leaderboard ===

// ReplaceTrending atomically swaps the trending zset with the freshly
// computed scores.
func (r *RedisStore) ReplaceTrending(scores map[string]float64) error {
	members := []*redis.Z{}
	for postId, score := range scores {
		members = append(members, &redis.Z{Score: score, Member: postId})
	}

	pipe := r.inner.TxPipeline()
	pipe.Del(ctx, trendingKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, trendingKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "fail to replace trending leaderboard")
}

// GetTrending returns up to limit post ids, best first.
func (r *RedisStore) GetTrending(limit int64) ([]string, error) {
	res, err := r.inner.ZRevRange(ctx, trendingKey, 0, limit-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fail to read trending leaderboard")
	}
	return res, nil
}
