package redis

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

// IRedis caches completed-session snapshots so results stay retrievable
// after the in-memory store sweeps a session out.
type IRedis interface {
	SetSessionSnapshot(ctx context.Context, sessionID string, payload []byte, expiration time.Duration) error
	GetSessionSnapshot(ctx context.Context, sessionID string) ([]byte, error)
	DeleteSessionSnapshot(ctx context.Context, sessionID string) error
}

var ErrSnapshotNotFound = errors.New("session snapshot not found")

const snapshotKeyPrefix = "harmony:session:"

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) SetSessionSnapshot(ctx context.Context, sessionID string, payload []byte, expiration time.Duration) error {
	key := snapshotKeyPrefix + sessionID
	err := r.client.Set(ctx, key, payload, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error caching snapshot for session %s: %v", sessionID, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Cached snapshot for session %s with expiration %v", sessionID, expiration))
	return nil
}

func (r *redisClient) GetSessionSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	key := snapshotKeyPrefix + sessionID
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading snapshot for session %s: %v", sessionID, err))
		return nil, err
	}
	return val, nil
}

func (r *redisClient) DeleteSessionSnapshot(ctx context.Context, sessionID string) error {
	key := snapshotKeyPrefix + sessionID
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting snapshot for session %s: %v", sessionID, err))
		return err
	}
	if result == 0 {
		logrus.Debug(fmt.Sprintf("No snapshot to delete for session %s", sessionID))
	}
	return nil
}
