package util

import (
	"errors"
	"fmt"
	"movie_browser/configs"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type MyJwtClaims struct {
	UserId      string `json:"userId"`
	Username    string `json:"username"`
	GeneratedAt int64  `json:"generatedAt"`
	jwt.RegisteredClaims
}

type TokenDetail struct {
	Token     string
	ExpiresAt time.Time
}

var ErrEmptySecret = errors.New("jwt secret is not configured")

func CreateToken(userId string, username string) (*TokenDetail, error) {
	secret := configs.GetConfigs().JwtSecret
	if secret == "" {
		return nil, ErrEmptySecret
	}
	expire := configs.GetConfigs().TokenExpire
	if expire <= 0 {
		expire = time.Hour
	}

	now := time.Now()
	expiresAt := now.Add(expire)
	claims := MyJwtClaims{
		UserId:      userId,
		Username:    username,
		GeneratedAt: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return &TokenDetail{
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func VerifyToken(tokenString string) (*jwt.Token, *MyJwtClaims, error) {
	claims := MyJwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signature method")
		}
		secret := configs.GetConfigs().JwtSecret
		if secret == "" {
			return nil, ErrEmptySecret
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, nil, err
	}
	if claims.UserId == "" {
		return nil, nil, errors.New("token has no userId")
	}

	return token, &claims, nil
}

// RemainingLifetime is how long the token stays valid, used to size blacklist entries.
func (c *MyJwtClaims) RemainingLifetime() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}
