// Package federated verifies identity tokens issued by external providers.
package federated

import (
	"context"
	"errors"
	"fmt"
	"movie_browser/model"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var ErrInvalidToken = errors.New("invalid identity token")

type Verifier interface {
	Verify(ctx context.Context, token string) (*model.FederatedIdentity, error)
}

//------------------------------------------
//------------------------------------------

type GoogleVerifier struct {
	clientId  string
	validator *idtoken.Validator
}

func NewGoogleVerifier(ctx context.Context, clientId string) (*GoogleVerifier, error) {
	if clientId == "" {
		return nil, errors.New("google client id is not configured")
	}
	v, err := idtoken.NewValidator(ctx, option.WithoutAuthentication())
	if err != nil {
		return nil, fmt.Errorf("create idtoken validator: %w", err)
	}
	return &GoogleVerifier{clientId: clientId, validator: v}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*model.FederatedIdentity, error) {
	payload, err := g.validator.Validate(ctx, token, g.clientId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if payload.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &model.FederatedIdentity{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}

//------------------------------------------
//------------------------------------------

type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (f *FirebaseVerifier) Verify(ctx context.Context, token string) (*model.FederatedIdentity, error) {
	t, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &model.FederatedIdentity{
		Subject: t.UID,
		Email:   claimString(t.Claims, "email"),
		Name:    claimString(t.Claims, "name"),
		Picture: claimString(t.Claims, "picture"),
	}, nil
}

//------------------------------------------
//------------------------------------------

func NewVerifier(ctx context.Context, provider string, googleClientId string, firebaseCredentialsFile string) (Verifier, error) {
	switch provider {
	case "firebase":
		v, err := NewFirebaseVerifier(ctx, firebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "google", "":
		v, err := NewGoogleVerifier(ctx, googleClientId)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown federated provider %q", provider)
	}
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
