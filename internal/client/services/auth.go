// Package services contains the application services of the Bitácora client.
// This file defines the authentication service: login and logout.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bitacora/internal/client/client"
	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange credentials for a token, load the matching profile and
//     make both the current session. A nil error means success; on any
//     failure the previous session is left exactly as it was.
//   - Logout: drop the session, in memory and on disk. Idempotent.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
}

// SessionStore is the part of the session the auth service writes to.
type SessionStore interface {
	Commit(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session SessionStore
	log     logging.Logger
}

func NewAuthService(c client.Client, session SessionStore, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, session: session, log: log}
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("login aborted: %v", p)
			a.log.Error(ctx, "login panicked", "username", username, "panic", p)
		}
	}()

	token, err := a.client.ObtainToken(ctx, username, string(password))
	if err != nil {
		a.log.Warn(ctx, "token exchange failed", "username", username, "error", err)
		return fmt.Errorf("obtain token: %w", err)
	}

	user, err := a.client.CurrentUser(ctx, token)
	if err != nil {
		a.log.Warn(ctx, "loading current user failed", "username", username, "error", err)
		return fmt.Errorf("current user: %w", err)
	}

	if err := a.session.Commit(ctx, token, user); err != nil {
		a.log.Error(ctx, "saving session failed", "username", username, "error", err)
		return err
	}

	a.log.Info(ctx, "logged in", "username", user.Username, "role", user.Role())
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}
