package repository

import (
	"context"
	"movie_browser/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func createTestUser(t *testing.T, repo *UserRepository, user *model.User) *model.User {
	t.Helper()
	require.NoError(t, repo.CreateUser(context.Background(), user))
	require.False(t, user.Id.IsZero())
	return user
}

func TestUserRepository_CreateUserDuplicates(t *testing.T) {
	repo := NewUserRepository(newTestDatabase(t))
	ctx := context.Background()

	createTestUser(t, repo, &model.User{Username: "ann", Email: "ann@x.com", PasswordHash: "hash"})

	err := repo.CreateUser(ctx, &model.User{Username: "ann", Email: "other@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	err = repo.CreateUser(ctx, &model.User{Username: "ann2", Email: "ann@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateUser)

	// federated users have no email, the email index must not treat them as duplicates
	createTestUser(t, repo, &model.User{Username: "g1", FederatedId: "google-1"})
	createTestUser(t, repo, &model.User{Username: "g2", FederatedId: "google-2"})

	err = repo.CreateUser(ctx, &model.User{Username: "g3", FederatedId: "google-1"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestUserRepository_Lookups(t *testing.T) {
	repo := NewUserRepository(newTestDatabase(t))
	ctx := context.Background()

	ann := createTestUser(t, repo, &model.User{Username: "ann", Email: "ann@x.com", PasswordHash: "hash"})
	createTestUser(t, repo, &model.User{Username: "bob", FederatedId: "google-bob"})

	found, err := repo.FindByUsernameOrEmail(ctx, "nobody", "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, ann.Id, found.Id)

	found, err = repo.GetUserById(ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, "hash", found.PasswordHash)

	found, err = repo.GetUserByFederatedId(ctx, "google-bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", found.Username)

	_, err = repo.GetUserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	exists, err := repo.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.UsernameExists(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ResetTokenIsSingleUse(t *testing.T) {
	repo := NewUserRepository(newTestDatabase(t))
	ctx := context.Background()
	now := testNow()

	ann := createTestUser(t, repo, &model.User{Username: "ann", Email: "ann@x.com", PasswordHash: "old-hash"})
	require.NoError(t, repo.SaveResetToken(ctx, ann.Id, "reset-token", now.Add(time.Hour)))

	stored, err := repo.GetUserById(ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, "reset-token", stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.True(t, stored.ResetTokenExpiry.Equal(now.Add(time.Hour)))

	updated, err := repo.ResetPasswordWithToken(ctx, "reset-token", "new-hash", now)
	require.NoError(t, err)
	assert.Equal(t, ann.Id, updated.Id)
	assert.Equal(t, "new-hash", updated.PasswordHash)
	assert.Empty(t, updated.ResetToken)
	assert.Nil(t, updated.ResetTokenExpiry)

	_, err = repo.ResetPasswordWithToken(ctx, "reset-token", "third-hash", now)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	stored, err = repo.GetUserById(ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.Empty(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestUserRepository_ResetTokenRejected(t *testing.T) {
	repo := NewUserRepository(newTestDatabase(t))
	ctx := context.Background()
	now := testNow()

	ann := createTestUser(t, repo, &model.User{Username: "ann", Email: "ann@x.com", PasswordHash: "old-hash"})
	require.NoError(t, repo.SaveResetToken(ctx, ann.Id, "expired-token", now.Add(-time.Minute)))

	_, err := repo.ResetPasswordWithToken(ctx, "expired-token", "new-hash", now)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	_, err = repo.ResetPasswordWithToken(ctx, "unknown-token", "new-hash", now)
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	stored, err := repo.GetUserById(ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, "old-hash", stored.PasswordHash)
	assert.Equal(t, "expired-token", stored.ResetToken)
}

func TestUserRepository_PhotoAndDelete(t *testing.T) {
	repo := NewUserRepository(newTestDatabase(t))
	ctx := context.Background()

	ann := createTestUser(t, repo, &model.User{Username: "ann", Email: "ann@x.com", PhotoUrl: "default.jpg"})

	require.NoError(t, repo.UpdatePhotoUrl(ctx, ann.Id, "http://localhost:5001/uploads/new.webp"))
	stored, err := repo.GetUserById(ctx, ann.Id)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001/uploads/new.webp", stored.PhotoUrl)

	require.NoError(t, repo.DeleteUser(ctx, ann.Id))
	assert.ErrorIs(t, repo.DeleteUser(ctx, ann.Id), mongo.ErrNoDocuments)
	assert.ErrorIs(t, repo.UpdatePhotoUrl(ctx, ann.Id, "x"), mongo.ErrNoDocuments)
	assert.ErrorIs(t, repo.SaveResetToken(ctx, ann.Id, "t", time.Now()), mongo.ErrNoDocuments)
}
