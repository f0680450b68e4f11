package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, s *Server, user, pass string) string {
	t.Helper()
	resp, err := http.Post(s.URL+"/api-token-auth/", "application/json",
		strings.NewReader(`{"username":"`+user+`","password":"`+pass+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct{ Token string }
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token
}

func get(t *testing.T, s *Server, token, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func cost(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestServer_TechnicianDoesNotSeeCosts(t *testing.T) {
	s := New()
	defer s.Close()
	tech := s.AddUser("beto", "pw", false)
	s.Seed(models.ServiceLog{
		Client:     "ACME",
		Date:       "2024-03-01",
		Technician: &models.TechnicianRef{ID: tech.ID},
		LineItems:  []models.LineItem{{Quantity: 2, Description: "Cable", Cost: cost("10")}},
	})
	s.Seed(models.ServiceLog{Client: "Otro", Date: "2024-03-02", LineItems: []models.LineItem{{Quantity: 1, Description: "x"}}})

	resp := get(t, s, login(t, s, "beto", "pw"), "/api/bitacoras/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var logs []models.ServiceLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].LineItems[0].Cost)
	assert.True(t, logs[0].Total.Equal(decimal.NewFromInt(20)))
}

func TestServer_RejectsUnknownToken(t *testing.T) {
	s := New()
	defer s.Close()

	assert.Equal(t, http.StatusUnauthorized, get(t, s, "", "/api/bitacoras/").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, s, "nope", "/api/current_user/").StatusCode)
}

func TestServer_OverdueIsComputed(t *testing.T) {
	s := New()
	defer s.Close()
	s.Now = func() time.Time { return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC) }

	id := s.Seed(models.ServiceLog{Client: "A", Date: "2024-04-01", DueDate: "2024-05-01", PaymentState: models.PaymentInvoiced})
	l, ok := s.Log(id)
	require.True(t, ok)
	assert.True(t, l.IsOverdue)

	paid := s.Seed(models.ServiceLog{Client: "B", Date: "2024-04-01", DueDate: "2024-05-01", PaymentState: models.PaymentPaid})
	l, _ = s.Log(paid)
	assert.False(t, l.IsOverdue)
}

func TestServer_RecordsCalls(t *testing.T) {
	s := New()
	defer s.Close()
	s.AddUser("ana", "pw", true)
	tok := login(t, s, "ana", "pw")
	get(t, s, tok, "/api/bitacoras/resumen/?fecha_after=2024-01-01")

	assert.Equal(t, []string{"POST /api-token-auth/", "GET /api/bitacoras/resumen/"}, s.Calls())
}
