package repository

import (
	"context"
	"movie_browser/db/mongodb"
	"movie_browser/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:generate mockgen -destination=mocks/mock_movie_repository.go -package=mocks movie_browser/internal/repository IMovieRepository

type IMovieRepository interface {
	CountFreshMovies(ctx context.Context, since time.Time) (int64, error)
	GetRecentMovies(ctx context.Context, limit int) ([]model.CachedMovie, error)
	ReplaceMovies(ctx context.Context, movies []model.CachedMovie) error
}

type MovieRepository struct {
	mongodb *mongo.Database
}

func NewMovieRepository(mongodb *mongo.Database) *MovieRepository {
	return &MovieRepository{mongodb: mongodb}
}

//------------------------------------------
//------------------------------------------

func (m *MovieRepository) CountFreshMovies(ctx context.Context, since time.Time) (int64, error) {
	filter := bson.D{
		{"cacheTimestamp", bson.D{{"$gte", since}}},
	}

	return m.mongodb.
		Collection(mongodb.MoviesCollection).
		CountDocuments(ctx, filter)
}

func (m *MovieRepository) GetRecentMovies(ctx context.Context, limit int) ([]model.CachedMovie, error) {
	opts := options.Find().
		SetSort(bson.D{{"releaseDate", -1}, {"title", 1}}).
		SetLimit(int64(limit))

	cursor, err := m.mongodb.
		Collection(mongodb.MoviesCollection).
		Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make([]model.CachedMovie, 0, limit)
	if err = cursor.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceMovies drops the whole cache and inserts the new set. The two steps are not
// transactional, a concurrent reader can briefly observe an empty collection.
func (m *MovieRepository) ReplaceMovies(ctx context.Context, movies []model.CachedMovie) error {
	collection := m.mongodb.Collection(mongodb.MoviesCollection)

	if _, err := collection.DeleteMany(ctx, bson.D{}); err != nil {
		return err
	}
	if len(movies) == 0 {
		return nil
	}

	docs := make([]interface{}, len(movies))
	for i := range movies {
		docs[i] = movies[i]
	}
	_, err := collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}
