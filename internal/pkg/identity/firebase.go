package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/viniciusbm/onboardly/internal/pkg/env"
)

// firebaseProvider implements Provider on top of Firebase Authentication.
type firebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider initializes the Firebase Auth client. Credentials come
// from FIREBASE_CREDENTIALS_FILE, or application default credentials when the
// variable is unset.
func NewFirebaseProvider(ctx context.Context) (Provider, error) {
	var opts []option.ClientOption
	if credFile := env.GetEnv("FIREBASE_CREDENTIALS_FILE", ""); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &firebaseProvider{client: client}, nil
}

func (p *firebaseProvider) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	user, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("identity lookup for %s failed: %w", email, err)
	}
	return identityFromUser(user), nil
}

func (p *firebaseProvider) Create(ctx context.Context, email, secret, displayName string) (*Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(secret).
		DisplayName(displayName).
		EmailVerified(false)

	user, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("identity creation for %s failed: %w", email, err)
	}
	return identityFromUser(user), nil
}

func (p *firebaseProvider) GenerateResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLink(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", ErrAccountNotFound
		}
		return "", fmt.Errorf("reset link generation for %s failed: %w", email, err)
	}
	return link, nil
}

func (p *firebaseProvider) Delete(ctx context.Context, ref string) error {
	if err := p.client.DeleteUser(ctx, ref); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("identity deletion for %s failed: %w", ref, err)
	}
	return nil
}

func identityFromUser(user *auth.UserRecord) *Identity {
	return &Identity{
		Ref:         user.UID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}
