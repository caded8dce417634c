package utils

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	Logger "github.com/photolog-app/photolog/utils/log"
	"github.com/pkg/errors"
)

const (
	RedisKeyDelimiter = "__"
	DeepLinkPrefix    = "deeplink"

	// Deep links are single-use hints for the SPA to restore a photo detail
	// view after login. They expire quickly on purpose.
	DeepLinkTTL = 10 * time.Minute
)

// RedisKeyParser parses string segments into a redis key, or parse it back.
type RedisKeyParser struct {
	delimiter string
}

func (parser *RedisKeyParser) encode(strs []string) (string, bool) {
	for _, str := range strs {
		if strings.Contains(str, parser.delimiter) {
			return "", false
		}
	}
	return strings.Join(strs, parser.delimiter), true
}

func (parser *RedisKeyParser) decode(key string) []string {
	return strings.Split(key, parser.delimiter)
}

func GetDefaultRedisKeyParser() RedisKeyParser {
	return RedisKeyParser{delimiter: RedisKeyDelimiter}
}

// DeepLinkStore remembers, per visitor session, which photo the visitor tried
// to open before authenticating. Consume is destructive: each captured link
// can be read back exactly once.
type DeepLinkStore struct {
	client *redis.Client
	parser RedisKeyParser
}

func GetDeepLinkStore(ctx context.Context) (*DeepLinkStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASS"),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "fail to connect to redis")
	}

	return &DeepLinkStore{
		client: client,
		parser: GetDefaultRedisKeyParser(),
	}, nil
}

func (store *DeepLinkStore) key(sessionId string) (string, bool) {
	return store.parser.encode([]string{DeepLinkPrefix, sessionId})
}

// Capture stores the photo id the session wanted to open. An existing capture
// for the same session is overwritten.
func (store *DeepLinkStore) Capture(ctx context.Context, sessionId string, photoId string) error {
	key, ok := store.key(sessionId)
	if !ok {
		Logger.Log.Error("invalid deep link session id: " + sessionId)
		return nil
	}
	return store.client.SetEX(ctx, key, photoId, DeepLinkTTL).Err()
}

// Consume returns the captured photo id and removes it atomically. Returns ""
// when nothing was captured or the capture already expired.
func (store *DeepLinkStore) Consume(ctx context.Context, sessionId string) (string, error) {
	key, ok := store.key(sessionId)
	if !ok {
		return "", nil
	}
	res, err := store.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return res, nil
}
