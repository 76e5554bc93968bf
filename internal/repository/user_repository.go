package repository

import (
	"context"
	"errors"
	"movie_browser/db/mongodb"
	"movie_browser/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateUser = errors.New("username or email already exists")

//go:generate mockgen -destination=mocks/mock_user_repository.go -package=mocks movie_browser/internal/repository IUserRepository

type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error)
	GetUserById(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByFederatedId(ctx context.Context, federatedId string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	SaveResetToken(ctx context.Context, id primitive.ObjectID, token string, expiry time.Time) error
	ResetPasswordWithToken(ctx context.Context, token string, passwordHash string, now time.Time) (*model.User, error)
	UpdatePhotoUrl(ctx context.Context, id primitive.ObjectID, photoUrl string) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

type UserRepository struct {
	mongodb *mongo.Database
}

func NewUserRepository(mongodb *mongo.Database) *UserRepository {
	return &UserRepository{mongodb: mongodb}
}

//------------------------------------------
//------------------------------------------

func (r *UserRepository) users() *mongo.Collection {
	return r.mongodb.Collection(mongodb.UsersCollection)
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUser
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.Id = id
	}
	return nil
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error) {
	filter := bson.D{
		{"$or", bson.A{
			bson.D{{"username", username}},
			bson.D{{"email", email}},
		}},
	}
	return r.findOne(ctx, filter)
}

func (r *UserRepository) GetUserById(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.D{{"_id", id}})
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{"username", username}})
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{"email", email}})
}

func (r *UserRepository) GetUserByFederatedId(ctx context.Context, federatedId string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{"googleId", federatedId}})
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := r.users().CountDocuments(ctx, bson.D{{"username", username}}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *UserRepository) SaveResetToken(ctx context.Context, id primitive.ObjectID, token string, expiry time.Time) error {
	update := bson.D{
		{"$set", bson.D{
			{"resetPasswordToken", token},
			{"resetPasswordExpires", expiry},
			{"updatedAt", time.Now().UTC()},
		}},
	}
	res, err := r.users().UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ResetPasswordWithToken sets the new hash and clears the token fields in one
// find-and-modify, a second call with the same token matches nothing.
func (r *UserRepository) ResetPasswordWithToken(ctx context.Context, token string, passwordHash string, now time.Time) (*model.User, error) {
	filter := bson.D{
		{"resetPasswordToken", token},
		{"resetPasswordExpires", bson.D{{"$gt", now}}},
	}
	update := bson.D{
		{"$set", bson.D{
			{"password", passwordHash},
			{"updatedAt", now.UTC()},
		}},
		{"$unset", bson.D{
			{"resetPasswordToken", ""},
			{"resetPasswordExpires", ""},
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user model.User
	err := r.users().FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePhotoUrl(ctx context.Context, id primitive.ObjectID, photoUrl string) error {
	update := bson.D{
		{"$set", bson.D{
			{"photoUrl", photoUrl},
			{"updatedAt", time.Now().UTC()},
		}},
	}
	res, err := r.users().UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.users().DeleteOne(ctx, bson.D{{"_id", id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var user model.User
	err := r.users().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
