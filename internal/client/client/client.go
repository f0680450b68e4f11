package client

import (
	"context"
	"io"
	"net/url"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
)

type Client interface {
	// Request performs an authenticated JSON call relative to the API root.
	Request(ctx context.Context, method, endpoint string, body any, query url.Values) (*Result, error)
	LastError() error
	Loading() bool

	ObtainToken(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)

	DocumentURL(id int64) string
	Download(ctx context.Context, endpoint string, w io.Writer) (int64, error)
}

// TokenSource supplies the bearer token and is told when the server rejects it.
type TokenSource interface {
	Token() string
	Invalidate(ctx context.Context)
}
