package redis

import (
	"context"
	"errors"
	"movie_browser/configs"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var redisClient *redis.Client

var ErrNotConnected = errors.New("redis: client not connected")

func ConnectRedis() {
	time.Sleep(time.Duration(configs.GetConfigs().WaitForRedisConnectionSec) * time.Second)
	client := redis.NewClient(&redis.Options{
		Addr:     configs.GetConfigs().RedisUrl,
		Password: configs.GetConfigs().RedisPassword,
		DB:       0,
	})
	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Error().Err(err).Str("addr", configs.GetConfigs().RedisUrl).Msg("redis ping failed")
	} else {
		log.Info().Str("pong", pong).Msg("redis connected")
	}
	redisClient = client
}

func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func GetRedis(ctx context.Context, key string) (string, error) {
	if redisClient == nil {
		return "", ErrNotConnected
	}
	val, err := redisClient.Get(ctx, key).Result()
	return val, err
}

func ExistsRedis(ctx context.Context, key string) (bool, error) {
	if redisClient == nil {
		return false, ErrNotConnected
	}
	n, err := redisClient.Exists(ctx, key).Result()
	return n > 0, err
}

func SetRedis(ctx context.Context, key string, value interface{}, duration time.Duration) error {
	if redisClient == nil {
		return ErrNotConnected
	}
	err := redisClient.Set(ctx, key, value, duration).Err()
	return err
}

func DelRedis(ctx context.Context, keys ...string) error {
	if redisClient == nil {
		return ErrNotConnected
	}
	return redisClient.Del(ctx, keys...).Err()
}

// CloseRedis closes the client, the helpers return ErrNotConnected afterwards.
func CloseRedis() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}
