package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/bitacora/internal/client/client"
	"github.com/dmitrijs2005/bitacora/internal/client/config"
	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/client/services"
	"github.com/dmitrijs2005/bitacora/internal/client/session"
	"github.com/dmitrijs2005/bitacora/internal/common"
	"github.com/dmitrijs2005/bitacora/internal/logging"
)

// Session is the read side of the session store used by the screens.
type Session interface {
	IsAuthenticated() bool
	IsAdmin() bool
	User() *models.User
}

type App struct {
	config      *config.Config
	log         logging.Logger
	db          *sql.DB
	session     Session
	authService services.AuthService
	logService  services.ServiceLogService
	reader      *bufio.Reader
	out         io.Writer
	now         func() time.Time
}

// NewApp opens the session database, restores a persisted session and
// builds the services. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	return newApp(ctx, c, log, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	store := session.NewStore(db, log)
	store.Restore(ctx)

	api := client.NewRESTClient(c.ServerURL, store, log)

	return &App{
		config:      c,
		log:         log,
		db:          db,
		session:     store,
		authService: services.NewAuthService(api, store, log),
		logService:  services.NewServiceLogService(api),
		reader:      bufio.NewReader(in),
		out:         out,
		now:         time.Now,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin()
}

// status is shown in the prompt: "(ana admin)" or "" when logged out.
func (a *App) status() string {
	u := a.session.User()
	if !a.isLoggedIn() || u == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", u.Username, u.Role())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		a.println("Please log in first.")
		return common.ErrNotLoggedIn
	}
	return nil
}

func (a *App) requireAdmin() error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if !a.isAdmin() {
		a.println("This action is reserved to administrators.")
		return common.ErrNotPermitted
	}
	return nil
}

// fail reports err inline and returns it.
func (a *App) fail(ctx context.Context, action string, err error) error {
	a.log.Warn(ctx, action+" failed", "error", err)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, models.ErrValidation):
		a.println("Invalid data:", err.Error())
	case errors.Is(err, client.ErrUnauthorized):
		a.println("Session expired, please log in again.")
	case errors.Is(err, client.ErrForbidden):
		a.println("Not allowed.")
	case errors.Is(err, client.ErrNotFound):
		a.println("Not found.")
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unavailable.")
	case errors.As(err, &apiErr):
		a.printf("Error: %s\n", apiErr.Detail())
	default:
		a.printf("Error: %v\n", err)
	}
	return err
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: id required", models.ErrValidation)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", models.ErrValidation, args[0])
	}
	return id, nil
}

// idArg resolves the record id from args, prompting when it is missing.
func (a *App) idArg(args []string) (int64, error) {
	if len(args) == 0 {
		s, err := getSimpleText(a.reader, "Service log id", a.out)
		if err != nil {
			return 0, err
		}
		args = []string{s}
	}
	id, err := parseID(args)
	if err != nil {
		a.println("Usage: <command> <id>")
		return 0, err
	}
	return id, nil
}
