package configs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DbConfigData struct {
	Id                         primitive.ObjectID `bson:"_id"`
	Title                      string             `bson:"title"`
	CorsAllowedOrigins         []string           `bson:"corsAllowedOrigins"`
	ProfileFileSizeLimit       int64              `bson:"profileFileSizeLimit"`
	ProfileImageExtensionLimit string             `bson:"profileImageExtensionLimit"`
}

const (
	// megabytes
	defaultProfileFileSizeLimit       = 5
	defaultProfileImageExtensionLimit = "jpg, jpeg, png, webp, gif"
	dbConfigsReloadInterval           = 15 * time.Minute
)

var rwm sync.RWMutex
var dbConfigs = DbConfigData{
	ProfileFileSizeLimit:       defaultProfileFileSizeLimit,
	ProfileImageExtensionLimit: defaultProfileImageExtensionLimit,
}

func GetDbConfigs() DbConfigData {
	rwm.RLock()
	defer rwm.RUnlock()
	return dbConfigs
}

func LoadDbConfigs(mongodb *mongo.Database) {
	tick := time.NewTicker(dbConfigsReloadInterval)
	defer tick.Stop()
	_ = load(mongodb)
	for range tick.C {
		_ = load(mongodb)
	}
}

func load(mongodb *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var loaded DbConfigData
	err := mongodb.
		Collection("configs").
		FindOne(ctx, bson.D{{"title", "server configs"}}).
		Decode(&loaded)
	if err != nil {
		if configs.PrintErrors {
			log.Error().Err(err).Msg(fmt.Sprintf("could not get dbConfig from mongodb: %s", err))
		}
		sentry.CaptureException(err)
		return err
	}

	if loaded.ProfileFileSizeLimit <= 0 {
		loaded.ProfileFileSizeLimit = defaultProfileFileSizeLimit
	}
	if loaded.ProfileImageExtensionLimit == "" {
		loaded.ProfileImageExtensionLimit = defaultProfileImageExtensionLimit
	}

	rwm.Lock()
	dbConfigs = loaded
	rwm.Unlock()
	return nil
}
