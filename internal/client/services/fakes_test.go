package services

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/bitacora/internal/client/client"
	"github.com/dmitrijs2005/bitacora/internal/client/models"
)

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	mu sync.Mutex

	ObtainTokenRet string
	ObtainTokenErr error
	CurrentUserRet *models.User
	CurrentUserErr error
	CurrentUserFn  func()

	RequestRet *client.Result
	RequestErr error
	// RequestGate, when set, blocks Request until closed.
	RequestGate chan struct{}
	Started     chan struct{}

	Requests int

	LastUser     string
	LastPassword string
	LastToken    string
	LastMethod   string
	LastEndpoint string
	LastBody     any
	LastQuery    url.Values
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Request(ctx context.Context, method, endpoint string, body any, query url.Values) (*client.Result, error) {
	f.mu.Lock()
	f.Requests++
	f.LastMethod = method
	f.LastEndpoint = endpoint
	f.LastBody = body
	f.LastQuery = query
	gate, started := f.RequestGate, f.Started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return f.RequestRet, f.RequestErr
}

func (f *fakeClient) LastError() error { return f.RequestErr }
func (f *fakeClient) Loading() bool    { return false }

func (f *fakeClient) ObtainToken(ctx context.Context, username, password string) (string, error) {
	f.LastUser = username
	f.LastPassword = password
	return f.ObtainTokenRet, f.ObtainTokenErr
}

func (f *fakeClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	f.LastToken = token
	if f.CurrentUserFn != nil {
		f.CurrentUserFn()
	}
	return f.CurrentUserRet, f.CurrentUserErr
}

func (f *fakeClient) DocumentURL(id int64) string { return "doc" }

func (f *fakeClient) Download(ctx context.Context, endpoint string, w io.Writer) (int64, error) {
	f.LastEndpoint = endpoint
	n, err := io.WriteString(w, "pdf")
	return int64(n), err
}

// fakeSession implements SessionStore.
type fakeSession struct {
	CommitErr error
	ClearErr  error

	Commits    int
	Clears     int
	LastToken  string
	LastUserID int64
}

func (f *fakeSession) Commit(ctx context.Context, token string, user *models.User) error {
	f.Commits++
	if f.CommitErr != nil {
		return f.CommitErr
	}
	f.LastToken = token
	f.LastUserID = user.ID
	return nil
}

func (f *fakeSession) Clear(ctx context.Context) error {
	f.Clears++
	return f.ClearErr
}
