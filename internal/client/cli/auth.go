package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bitacora/internal/client/client"
)

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Login prompts for credentials and opens a session. A failure is reported
// inline and leaves any previous session untouched; there is no retry.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		switch {
		case errors.Is(err, client.ErrInvalidCredentials):
			a.println("incorrect credentials")
		case errors.Is(err, client.ErrUnavailable):
			a.println("Server unavailable.")
		default:
			a.println("Login failed.")
		}
		return err
	}

	u := a.session.User()
	a.printf("Welcome, %s (%s)\n", u.Username, u.Role())
	return a.List(ctx)
}

// Logout drops the session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout failed", "error", err)
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	u := a.session.User()
	a.printf("%s (id %d, %s) on %s\n", u.Username, u.ID, u.Role(), a.config.ServerURL)
	return nil
}
