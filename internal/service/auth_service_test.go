package service

import (
	"context"
	"errors"
	"movie_browser/configs"
	"movie_browser/internal/repository"
	"movie_browser/internal/repository/mocks"
	"movie_browser/model"
	"movie_browser/util"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

const testServerAddress = "http://localhost:5001"

type memoryBlacklist struct {
	mux    sync.Mutex
	tokens map[string]time.Duration
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{tokens: map[string]time.Duration{}}
}

func (b *memoryBlacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.tokens[token] = ttl
	return nil
}

func (b *memoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mux.Lock()
	defer b.mux.Unlock()
	_, ok := b.tokens[token]
	return ok, nil
}

type recordingMailer struct {
	to   string
	link string
	err  error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, to string, resetLink string) error {
	m.to = to
	m.link = resetLink
	return m.err
}

func (m *recordingMailer) Close() error {
	return nil
}

type stubVerifier struct {
	identity *model.FederatedIdentity
	err      error
}

func (v stubVerifier) Verify(_ context.Context, _ string) (*model.FederatedIdentity, error) {
	return v.identity, v.err
}

func withTestConfigs(t *testing.T) {
	t.Helper()
	previous := configs.GetConfigs()
	configs.SetConfigs(configs.ConfigStruct{
		JwtSecret:        "test-secret",
		TokenExpire:      time.Hour,
		ServerAddress:    testServerAddress,
		ResetPasswordUrl: "http://localhost:3000",
	})
	t.Cleanup(func() { configs.SetConfigs(previous) })
}

type authFixture struct {
	svc       *AuthService
	repo      *mocks.MockIUserRepository
	blacklist *memoryBlacklist
	mailer    *recordingMailer
	store     *PhotoStore
}

func newAuthFixture(t *testing.T, verifier *stubVerifier) *authFixture {
	t.Helper()
	withTestConfigs(t)
	ctrl := gomock.NewController(t)
	f := &authFixture{
		repo:      mocks.NewMockIUserRepository(ctrl),
		blacklist: newMemoryBlacklist(),
		mailer:    &recordingMailer{},
		store:     NewPhotoStore(t.TempDir(), testServerAddress, testServerAddress+"/uploads/default-profile.jpg"),
	}
	if verifier != nil {
		f.svc = NewAuthService(f.repo, f.blacklist, f.mailer, *verifier, f.store)
	} else {
		f.svc = NewAuthService(f.repo, f.blacklist, f.mailer, nil, f.store)
	}
	return f
}

func hashedUser(t *testing.T, username string, password string) *model.User {
	t.Helper()
	hash, err := util.HashPassword(password)
	require.NoError(t, err)
	return &model.User{Id: primitive.NewObjectID(), Username: username, PasswordHash: hash}
}

//------------------------------------------
//------------------------------------------

func TestRegister(t *testing.T) {
	f := newAuthFixture(t, nil)

	var created *model.User
	f.repo.EXPECT().FindByUsernameOrEmail(gomock.Any(), "ann", "ann@x.com").Return(nil, mongo.ErrNoDocuments)
	f.repo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *model.User) error {
			u.Id = primitive.NewObjectID()
			created = u
			return nil
		})

	user, token, err := f.svc.Register(context.Background(), &model.RegisterReq{
		Username: "ann",
		Email:    "ann@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created, user)

	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret1")))
	cost, err := bcrypt.Cost([]byte(created.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
	assert.Equal(t, testServerAddress+"/uploads/default-profile.jpg", created.PhotoUrl)

	_, claims, err := util.VerifyToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Id.Hex(), claims.UserId)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newAuthFixture(t, nil)
	req := &model.RegisterReq{Username: "ann", Email: "ann@x.com", Password: "secret1"}

	f.repo.EXPECT().FindByUsernameOrEmail(gomock.Any(), "ann", "ann@x.com").Return(&model.User{Username: "ann"}, nil)
	_, _, err := f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserAlreadyExist)

	// lost race against a concurrent insert
	f.repo.EXPECT().FindByUsernameOrEmail(gomock.Any(), "ann", "ann@x.com").Return(nil, mongo.ErrNoDocuments)
	f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicateUser)
	_, _, err = f.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserAlreadyExist)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t, nil)
	ann := hashedUser(t, "ann", "secret1")

	f.repo.EXPECT().GetUserByUsername(gomock.Any(), "ann").Return(ann, nil)
	user, token, err := f.svc.Login(context.Background(), &model.LoginReq{Username: "ann", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, ann, user)
	assert.NotEmpty(t, token.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t, nil)
	ann := hashedUser(t, "ann", "secret1")
	federatedOnly := &model.User{Id: primitive.NewObjectID(), Username: "bob", FederatedId: "g-1"}

	f.repo.EXPECT().GetUserByUsername(gomock.Any(), "ann").Return(ann, nil)
	f.repo.EXPECT().GetUserByUsername(gomock.Any(), "nobody").Return(nil, mongo.ErrNoDocuments)
	f.repo.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(federatedOnly, nil)

	_, _, err := f.svc.Login(context.Background(), &model.LoginReq{Username: "ann", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Login(context.Background(), &model.LoginReq{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Login(context.Background(), &model.LoginReq{Username: "bob", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

//------------------------------------------
//------------------------------------------

func TestFederatedLogin_ExistingUser(t *testing.T) {
	f := newAuthFixture(t, &stubVerifier{identity: &model.FederatedIdentity{Subject: "g-1", Name: "Ann"}})
	existing := &model.User{Id: primitive.NewObjectID(), Username: "Ann", FederatedId: "g-1"}

	f.repo.EXPECT().GetUserByFederatedId(gomock.Any(), "g-1").Return(existing, nil)

	user, token, err := f.svc.FederatedLogin(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, existing, user)
	assert.NotEmpty(t, token.Token)
}

func TestFederatedLogin_CreatesUserWithUniqueName(t *testing.T) {
	f := newAuthFixture(t, &stubVerifier{identity: &model.FederatedIdentity{
		Subject: "g-2",
		Name:    "Ann Lee",
		Picture: "https://lh3.example/photo.jpg",
	}})

	f.repo.EXPECT().GetUserByFederatedId(gomock.Any(), "g-2").Return(nil, mongo.ErrNoDocuments)
	f.repo.EXPECT().UsernameExists(gomock.Any(), "Ann_Lee").Return(true, nil)
	f.repo.EXPECT().UsernameExists(gomock.Any(), "Ann_Lee_1").Return(false, nil)
	f.repo.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *model.User) error {
			u.Id = primitive.NewObjectID()
			return nil
		})

	user, _, err := f.svc.FederatedLogin(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "Ann_Lee_1", user.Username)
	assert.Equal(t, "g-2", user.FederatedId)
	assert.Equal(t, "https://lh3.example/photo.jpg", user.PhotoUrl)
	assert.False(t, user.HasPassword())
}

func TestFederatedLogin_UsernameTakenByAnotherIdentity(t *testing.T) {
	f := newAuthFixture(t, &stubVerifier{identity: &model.FederatedIdentity{Subject: "g-3", Name: "Bob"}})

	gomock.InOrder(
		f.repo.EXPECT().GetUserByFederatedId(gomock.Any(), "g-3").Return(nil, mongo.ErrNoDocuments),
		f.repo.EXPECT().UsernameExists(gomock.Any(), "Bob").Return(false, nil),
		f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicateUser),
		f.repo.EXPECT().GetUserByFederatedId(gomock.Any(), "g-3").Return(nil, mongo.ErrNoDocuments),
		f.repo.EXPECT().UsernameExists(gomock.Any(), "Bob").Return(true, nil),
		f.repo.EXPECT().UsernameExists(gomock.Any(), "Bob_1").Return(false, nil),
		f.repo.EXPECT().
			CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *model.User) error {
				u.Id = primitive.NewObjectID()
				return nil
			}),
	)

	user, token, err := f.svc.FederatedLogin(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "Bob_1", user.Username)
	assert.Equal(t, "g-3", user.FederatedId)
	assert.NotEmpty(t, token.Token)
}

func TestFederatedLogin_SameIdentityCreatedConcurrently(t *testing.T) {
	f := newAuthFixture(t, &stubVerifier{identity: &model.FederatedIdentity{Subject: "g-4", Name: "Cat"}})
	winner := &model.User{Id: primitive.NewObjectID(), Username: "Cat", FederatedId: "g-4"}

	gomock.InOrder(
		f.repo.EXPECT().GetUserByFederatedId(gomock.Any(), "g-4").Return(nil, mongo.ErrNoDocuments),
		f.repo.EXPECT().UsernameExists(gomock.Any(), "Cat").Return(false, nil),
		f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicateUser),
		f.repo.EXPECT().GetUserByFederatedId(gomock.Any(), "g-4").Return(winner, nil),
	)

	user, _, err := f.svc.FederatedLogin(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, winner, user)
}

func TestFederatedLogin_VerificationFails(t *testing.T) {
	f := newAuthFixture(t, &stubVerifier{err: errors.New("token expired")})
	_, _, err := f.svc.FederatedLogin(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrFederatedAuthFailed)

	disabled := newAuthFixture(t, nil)
	_, _, err = disabled.svc.FederatedLogin(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrFederatedAuthFailed)
}

func TestFederatedUsernameBase(t *testing.T) {
	assert.Equal(t, "Ann_Lee", federatedUsernameBase(&model.FederatedIdentity{Name: "  Ann Lee "}))
	assert.Equal(t, "ann.lee", federatedUsernameBase(&model.FederatedIdentity{Email: "ann.lee@x.com"}))
	assert.Equal(t, "user", federatedUsernameBase(&model.FederatedIdentity{Name: "李"}))
}

//------------------------------------------
//------------------------------------------

func TestLogout_BlacklistsToken(t *testing.T) {
	f := newAuthFixture(t, nil)

	token, err := util.CreateToken(primitive.NewObjectID().Hex(), "ann")
	require.NoError(t, err)
	_, claims, err := util.VerifyToken(token.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), token.Token, claims))

	ttl, ok := f.blacklist.tokens[token.Token]
	require.True(t, ok)
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour)
}

func TestRequestPasswordReset(t *testing.T) {
	f := newAuthFixture(t, nil)
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	ann := &model.User{Id: primitive.NewObjectID(), Username: "ann", Email: "ann@x.com"}

	var savedToken string
	f.repo.EXPECT().GetUserByEmail(gomock.Any(), "ann@x.com").Return(ann, nil)
	f.repo.EXPECT().
		SaveResetToken(gomock.Any(), ann.Id, gomock.Any(), now.Add(time.Hour)).
		DoAndReturn(func(_ context.Context, _ primitive.ObjectID, token string, _ time.Time) error {
			savedToken = token
			return nil
		})

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), " Ann@x.com "))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{40}$`), savedToken)
	assert.Equal(t, "ann@x.com", f.mailer.to)
	assert.Equal(t, "http://localhost:3000/reset/"+savedToken, f.mailer.link)
}

func TestRequestPasswordReset_MailerFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.mailer.err = errors.New("broker down")
	ann := &model.User{Id: primitive.NewObjectID(), Username: "ann", Email: "ann@x.com"}

	f.repo.EXPECT().GetUserByEmail(gomock.Any(), "ann@x.com").Return(ann, nil)
	f.repo.EXPECT().SaveResetToken(gomock.Any(), ann.Id, gomock.Any(), gomock.Any()).Return(nil)

	assert.NoError(t, f.svc.RequestPasswordReset(context.Background(), "ann@x.com"))
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@x.com").Return(nil, mongo.ErrNoDocuments)

	err := f.svc.RequestPasswordReset(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	assert.Empty(t, f.mailer.link)
}

func TestResetPassword_SingleUse(t *testing.T) {
	f := newAuthFixture(t, nil)
	ann := &model.User{Id: primitive.NewObjectID(), Username: "ann"}

	var storedHash string
	gomock.InOrder(
		f.repo.EXPECT().
			ResetPasswordWithToken(gomock.Any(), "abc123", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, hash string, _ time.Time) (*model.User, error) {
				storedHash = hash
				return ann, nil
			}),
		f.repo.EXPECT().
			ResetPasswordWithToken(gomock.Any(), "abc123", gomock.Any(), gomock.Any()).
			Return(nil, mongo.ErrNoDocuments),
	)

	require.NoError(t, f.svc.ResetPassword(context.Background(), "abc123", "newpass1"))
	assert.True(t, util.CheckPasswordHash("newpass1", storedHash))

	err := f.svc.ResetPassword(context.Background(), "abc123", "another1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	err = f.svc.ResetPassword(context.Background(), "", "another1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestDeleteAccount(t *testing.T) {
	f := newAuthFixture(t, nil)

	photoPath := filepath.Join(f.store.dir, "old.webp")
	require.NoError(t, os.WriteFile(photoPath, []byte("x"), 0o644))
	ann := &model.User{Id: primitive.NewObjectID(), Username: "ann", PhotoUrl: testServerAddress + "/uploads/old.webp"}

	token, err := util.CreateToken(ann.Id.Hex(), "ann")
	require.NoError(t, err)
	_, claims, err := util.VerifyToken(token.Token)
	require.NoError(t, err)

	f.repo.EXPECT().GetUserById(gomock.Any(), ann.Id).Return(ann, nil)
	f.repo.EXPECT().DeleteUser(gomock.Any(), ann.Id).Return(nil)

	require.NoError(t, f.svc.DeleteAccount(context.Background(), token.Token, claims))

	_, err = os.Stat(photoPath)
	assert.True(t, os.IsNotExist(err))
	blacklisted, _ := f.blacklist.Contains(context.Background(), token.Token)
	assert.True(t, blacklisted)
}

func TestDeleteAccount_UserMissing(t *testing.T) {
	f := newAuthFixture(t, nil)
	id := primitive.NewObjectID()

	f.repo.EXPECT().GetUserById(gomock.Any(), id).Return(nil, mongo.ErrNoDocuments)

	err := f.svc.DeleteAccount(context.Background(), "token", &util.MyJwtClaims{UserId: id.Hex()})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
