package mongodb

import (
	"context"
	"movie_browser/configs"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	MoviesCollection = "movies"
	UsersCollection  = "users"
)

type MongoDatabase struct {
	Db     *mongo.Database
	client *mongo.Client
}

func NewDatabase() (*MongoDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(configs.GetConfigs().MongodbDatabaseUrl)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &MongoDatabase{
		client: client,
		Db:     client.Database(configs.GetConfigs().MongodbDatabaseName),
	}, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on for duplicate detection.
func (d *MongoDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := d.Db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{"username", 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{"email", 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.D{{"email", bson.D{{"$type", "string"}}}}),
		},
		{
			Keys:    bson.D{{"googleId", 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{"resetPasswordToken", 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = d.Db.Collection(MoviesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{"externalId", 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{"cacheTimestamp", -1}},
		},
		{
			Keys: bson.D{{"releaseDate", -1}},
		},
	})
	return err
}

func (d *MongoDatabase) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.client.Disconnect(ctx); err != nil {
		panic(err)
	}
}

func (d *MongoDatabase) GetDB() *mongo.Database {
	return d.Db
}
