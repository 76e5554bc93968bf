package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"movie_browser/db/redis"
	"movie_browser/model"
	errorHandler "movie_browser/pkg/error"
	"time"
)

type ITokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

const (
	jwtDataCachePrefix   = "jwtKey:"
	movieDataCachePrefix = "movie:"
	movieDataCacheTtl    = 1 * time.Hour
)

//------------------------------------------
//------------------------------------------

// RedisTokenBlacklist keeps logged out tokens until they would have expired anyway.
type RedisTokenBlacklist struct{}

func NewRedisTokenBlacklist() *RedisTokenBlacklist {
	return &RedisTokenBlacklist{}
}

func (RedisTokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	err := redis.SetRedis(ctx, jwtDataCachePrefix+token, "logout", ttl)
	if err != nil {
		errorMessage := fmt.Sprintf("Redis Error on saving jwt: %v", err)
		errorHandler.SaveError(errorMessage, err)
	}
	return err
}

func (RedisTokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	return redis.ExistsRedis(ctx, jwtDataCachePrefix+token)
}

//------------------------------------------
//------------------------------------------

func getCachedMovieDetail(ctx context.Context, imdbId string) (*model.MovieDetail, error) {
	result, err := redis.GetRedis(ctx, movieDataCachePrefix+imdbId)
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var cached model.CachedMovieDetail
	if err = json.Unmarshal([]byte(result), &cached); err != nil {
		_ = redis.DelRedis(ctx, movieDataCachePrefix+imdbId)
		return nil, err
	}
	return cached.Detail, nil
}

func setMovieDetailCache(ctx context.Context, imdbId string, detail *model.MovieDetail) error {
	jsonData, err := json.Marshal(model.CachedMovieDetail{
		MovieId:  imdbId,
		Detail:   detail,
		CachedAt: time.Now().Unix(),
	})
	if err != nil {
		errorMessage := fmt.Sprintf("Redis Error on saving movieData: %v", err)
		errorHandler.SaveError(errorMessage, err)
		return err
	}

	err = redis.SetRedis(ctx, movieDataCachePrefix+imdbId, jsonData, movieDataCacheTtl)
	if err != nil && !errors.Is(err, redis.ErrNotConnected) {
		errorMessage := fmt.Sprintf("Redis Error on saving movieData: %v", err)
		errorHandler.SaveError(errorMessage, err)
	}
	return err
}
