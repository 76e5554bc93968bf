package service

import (
	"context"
	"errors"
	"fmt"
	"movie_browser/configs"
	"movie_browser/internal/repository"
	"movie_browser/model"
	errorHandler "movie_browser/pkg/error"
	"movie_browser/pkg/federated"
	"movie_browser/pkg/mailer"
	"movie_browser/util"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type IAuthService interface {
	Register(ctx context.Context, req *model.RegisterReq) (*model.User, *util.TokenDetail, error)
	Login(ctx context.Context, req *model.LoginReq) (*model.User, *util.TokenDetail, error)
	FederatedLogin(ctx context.Context, idToken string) (*model.User, *util.TokenDetail, error)
	Logout(ctx context.Context, token string, claims *util.MyJwtClaims) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken string, password string) error
	DeleteAccount(ctx context.Context, token string, claims *util.MyJwtClaims) error
}

var (
	ErrUserAlreadyExist    = errors.New("email or username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrFederatedAuthFailed = errors.New("federated authentication failed")
	ErrEmailNotFound       = errors.New("no user with that email")
	ErrInvalidResetToken   = errors.New("reset token is invalid or has expired")
	ErrUsernameUnavailable = errors.New("could not find a free username")
)

const (
	resetTokenTtl           = 1 * time.Hour
	maxUsernameAttempts     = 20
	federatedCreateAttempts = 3
	federatedUsernameLimit  = 30
)

var usernameCleanRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

type AuthService struct {
	userRepo   repository.IUserRepository
	blacklist  ITokenBlacklist
	mailer     mailer.Mailer
	verifier   federated.Verifier
	photoStore *PhotoStore
	timeout    time.Duration
	now        func() time.Time
}

// NewAuthService builds the service, verifier may be nil to disable federated login.
func NewAuthService(userRepo repository.IUserRepository, blacklist ITokenBlacklist, m mailer.Mailer, verifier federated.Verifier, photoStore *PhotoStore) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		mailer:     m,
		verifier:   verifier,
		photoStore: photoStore,
		timeout:    5 * time.Second,
		now:        time.Now,
	}
}

//------------------------------------------
//------------------------------------------

func (a *AuthService) Register(ctx context.Context, req *model.RegisterReq) (*model.User, *util.TokenDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := a.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, err
	}
	if existing != nil {
		log.Warn().Str("username", username).Msg("registration attempt with existing email or username")
		return nil, nil, ErrUserAlreadyExist
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PhotoUrl:     a.photoStore.DefaultUrl(),
	}
	if err = a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, nil, ErrUserAlreadyExist
		}
		return nil, nil, err
	}

	token, err := util.CreateToken(user.Id.Hex(), user.Username)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("username", user.Username).Msg("new user registered")
	return user, token, nil
}

func (a *AuthService) Login(ctx context.Context, req *model.LoginReq) (*model.User, *util.TokenDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	user, err := a.userRepo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !user.HasPassword() || !util.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := util.CreateToken(user.Id.Hex(), user.Username)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// FederatedLogin signs in with an external identity token, creating the account on first use.
func (a *AuthService) FederatedLogin(ctx context.Context, idToken string) (*model.User, *util.TokenDetail, error) {
	if a.verifier == nil {
		return nil, nil, ErrFederatedAuthFailed
	}

	identity, err := a.verifier.Verify(ctx, idToken)
	if err != nil {
		log.Warn().Err(err).Msg("federated token verification failed")
		return nil, nil, fmt.Errorf("%w: %v", ErrFederatedAuthFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	user, err := a.userRepo.GetUserByFederatedId(ctx, identity.Subject)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, err
	}
	if user == nil {
		user, err = a.createFederatedUser(ctx, identity)
		if err != nil {
			return nil, nil, err
		}
	}

	token, err := util.CreateToken(user.Id.Hex(), user.Username)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (a *AuthService) createFederatedUser(ctx context.Context, identity *model.FederatedIdentity) (*model.User, error) {
	photoUrl := identity.Picture
	if photoUrl == "" {
		photoUrl = a.photoStore.DefaultUrl()
	}

	for attempt := 0; attempt < federatedCreateAttempts; attempt++ {
		username, err := a.uniqueUsername(ctx, federatedUsernameBase(identity))
		if err != nil {
			return nil, err
		}

		user := &model.User{
			Username:    username,
			FederatedId: identity.Subject,
			PhotoUrl:    photoUrl,
		}
		err = a.userRepo.CreateUser(ctx, user)
		if err == nil {
			log.Info().Str("username", user.Username).Msg("new federated user registered")
			return user, nil
		}
		if !errors.Is(err, repository.ErrDuplicateUser) {
			return nil, err
		}

		// a concurrent login with the same identity may have won
		existing, err := a.userRepo.GetUserByFederatedId(ctx, identity.Subject)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		log.Debug().Str("username", username).Msg("federated username taken concurrently, retrying")
	}
	return nil, ErrUsernameUnavailable
}

func federatedUsernameBase(identity *model.FederatedIdentity) string {
	base := identity.Name
	if base == "" && identity.Email != "" {
		base = strings.Split(identity.Email, "@")[0]
	}
	base = usernameCleanRegex.ReplaceAllString(strings.TrimSpace(base), "_")
	base = strings.Trim(base, "_")
	if len(base) > federatedUsernameLimit {
		base = base[:federatedUsernameLimit]
	}
	if len(base) < 3 {
		base = "user"
	}
	return base
}

func (a *AuthService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		exists, err := a.userRepo.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
	return "", ErrUsernameUnavailable
}

//------------------------------------------
//------------------------------------------

// Logout blacklists the token for what is left of its lifetime.
func (a *AuthService) Logout(ctx context.Context, token string, claims *util.MyJwtClaims) error {
	if token == "" || claims == nil {
		return nil
	}
	return a.blacklist.Add(ctx, token, claims.RemainingLifetime())
}

func (a *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrEmailNotFound
		}
		return err
	}

	resetToken, err := util.GenerateResetToken()
	if err != nil {
		return err
	}
	if err = a.userRepo.SaveResetToken(ctx, user.Id, resetToken, a.now().Add(resetTokenTtl)); err != nil {
		return err
	}

	// delivery problems are reported but do not fail the request
	if err = a.mailer.SendPasswordReset(ctx, email, resetLink(resetToken)); err != nil {
		errorMessage := fmt.Sprintf("Error sending password reset email: %v", err)
		errorHandler.SaveError(errorMessage, err)
	}
	return nil
}

func resetLink(resetToken string) string {
	base := configs.GetConfigs().ResetPasswordUrl
	if base == "" {
		base = configs.GetConfigs().ServerAddress
	}
	return strings.TrimSuffix(base, "/") + "/reset/" + resetToken
}

func (a *AuthService) ResetPassword(ctx context.Context, resetToken string, password string) error {
	if resetToken == "" {
		return ErrInvalidResetToken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	user, err := a.userRepo.ResetPasswordWithToken(ctx, resetToken, hash, a.now())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidResetToken
		}
		return err
	}

	log.Info().Str("username", user.Username).Msg("password reset")
	return nil
}

// DeleteAccount removes the user and their uploaded photo, then blacklists the token.
func (a *AuthService) DeleteAccount(ctx context.Context, token string, claims *util.MyJwtClaims) error {
	id, err := primitive.ObjectIDFromHex(claims.UserId)
	if err != nil {
		return ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	user, err := a.userRepo.GetUserById(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if err = a.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if err = a.photoStore.Remove(user.PhotoUrl); err != nil {
		errorMessage := fmt.Sprintf("Error removing profile photo of deleted user: %v", err)
		errorHandler.SaveError(errorMessage, err)
	}
	_ = a.Logout(ctx, token, claims)

	log.Info().Str("username", user.Username).Msg("account deleted")
	return nil
}
