// Package fakeapi is an in-memory stand-in for the Bitácora REST API used by
// tests. It implements token authentication, the bitacoras resource with
// staff-only costs, the marcar_pagado action, the resumen report and the
// per-record document.
package fakeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/common"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type account struct {
	password string
	user     models.User
}

type Server struct {
	*httptest.Server

	// Now is the clock used for timestamps and overdue checks.
	Now func() time.Time

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]int64
	logs     map[int64]*models.ServiceLog
	nextUser int64
	nextLog  int64
	nextItem int64
	calls    []string
}

type ctxKey struct{}

// New starts a server. Close it when done.
func New() *Server {
	s := &Server{
		Now:      time.Now,
		accounts: map[string]*account{},
		tokens:   map[string]int64{},
		logs:     map[int64]*models.ServiceLog{},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api-token-auth/", s.obtainToken).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/current_user/", s.currentUser).Methods(http.MethodGet)
	api.HandleFunc("/bitacoras/", s.list).Methods(http.MethodGet)
	api.HandleFunc("/bitacoras/", s.create).Methods(http.MethodPost)
	api.HandleFunc("/bitacoras/resumen/", s.summary).Methods(http.MethodGet)
	api.HandleFunc("/bitacoras/{id:[0-9]+}/", s.retrieve).Methods(http.MethodGet)
	api.HandleFunc("/bitacoras/{id:[0-9]+}/", s.update).Methods(http.MethodPut)
	api.HandleFunc("/bitacoras/{id:[0-9]+}/", s.destroy).Methods(http.MethodDelete)
	api.HandleFunc("/bitacoras/{id:[0-9]+}/marcar_pagado/", s.markPaid).Methods(http.MethodPost)
	api.HandleFunc("/bitacoras/{id:[0-9]+}/reporte/", s.document).Methods(http.MethodGet)
	return r
}

// AddUser registers an account and returns its profile.
func (s *Server) AddUser(username, password string, staff bool) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u := models.User{ID: s.nextUser, Username: username, IsStaff: staff}
	s.accounts[username] = &account{password: password, user: u}
	return u
}

// Seed stores l as is (costs included) and returns its id. Totals and the
// overdue flag are recomputed.
func (s *Server) Seed(l models.ServiceLog) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLog++
	l.ID = s.nextLog
	for i := range l.LineItems {
		s.nextItem++
		id := s.nextItem
		l.LineItems[i].ID = &id
	}
	if l.PaymentState == "" {
		l.PaymentState = models.PaymentPending
	}
	s.recompute(&l)
	s.logs[l.ID] = &l
	return l.ID
}

// Log returns a copy of the stored record.
func (s *Server) Log(id int64) (models.ServiceLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[id]
	if !ok {
		return models.ServiceLog{}, false
	}
	return *l, true
}

// RevokeTokens makes every issued token invalid.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]int64{}
}

// Calls returns "METHOD /path" for every request received so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(h, common.AuthorizationScheme+" ")
		if !ok {
			detail(w, http.StatusUnauthorized, "Las credenciales de autenticación no se proveyeron.")
			return
		}

		s.mu.Lock()
		uid, found := s.tokens[token]
		var user models.User
		if found {
			for _, a := range s.accounts {
				if a.user.ID == uid {
					user = a.user
				}
			}
		}
		s.mu.Unlock()

		if !found {
			detail(w, http.StatusUnauthorized, "Token inválido.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func userFrom(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}

func (s *Server) obtainToken(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		detail(w, http.StatusBadRequest, "JSON parse error")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[creds.Username]
	if !ok || a.password != creds.Password {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"No puede iniciar sesión con las credenciales proporcionadas."},
		})
		return
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.tokens[token] = a.user.ID
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r))
}

// recompute derives the server-owned fields.
func (s *Server) recompute(l *models.ServiceLog) {
	total := decimal.Zero
	for _, it := range l.LineItems {
		if it.Cost != nil {
			total = total.Add(it.Cost.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	l.Total = total
	l.IsOverdue = false
	if l.DueDate != "" && l.PaymentState != models.PaymentPaid {
		today := s.Now().Format(common.DateLayout)
		l.IsOverdue = l.DueDate < today
	}
}

// view renders l for user u: technicians never see costs.
func view(l *models.ServiceLog, u models.User) models.ServiceLog {
	out := *l
	out.LineItems = make([]models.LineItem, len(l.LineItems))
	copy(out.LineItems, l.LineItems)
	if !u.IsStaff {
		for i := range out.LineItems {
			out.LineItems[i].Cost = nil
		}
	}
	return out
}

func visible(l *models.ServiceLog, u models.User) bool {
	return u.IsStaff || (l.Technician != nil && l.Technician.ID == u.ID)
}

func (s *Server) sorted(u models.User) []models.ServiceLog {
	out := make([]models.ServiceLog, 0, len(s.logs))
	for _, l := range s.logs {
		if visible(l, u) {
			out = append(out, view(l, u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := s.sorted(userFrom(r))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// lookup resolves {id} for the caller; it writes 404 when not visible.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*models.ServiceLog, bool) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	l, ok := s.logs[id]
	if !ok || !visible(l, userFrom(r)) {
		detail(w, http.StatusNotFound, "No encontrado.")
		return nil, false
	}
	return l, true
}

func (s *Server) retrieve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(l, userFrom(r)))
}

type submission struct {
	Client        string               `json:"cliente"`
	Date          string               `json:"fecha"`
	LineItems     []models.LineItem    `json:"partidas"`
	PaymentState  models.PaymentState  `json:"estado_pago"`
	PaymentMethod models.PaymentMethod `json:"metodo_pago"`
	DueDate       *string              `json:"fecha_vencimiento"`
	InvoiceFolio  string               `json:"folio_factura"`
	PaymentNotes  string               `json:"notas_pago"`
}

func (sub *submission) errors() map[string][]string {
	errs := map[string][]string{}
	if strings.TrimSpace(sub.Client) == "" {
		errs["cliente"] = []string{"Este campo no puede estar en blanco."}
	}
	if !models.ValidDate(sub.Date) {
		errs["fecha"] = []string{"Fecha con formato erróneo."}
	}
	if len(sub.LineItems) == 0 {
		errs["partidas"] = []string{"Debe incluir al menos una partida."}
	}
	if sub.PaymentState != "" && !sub.PaymentState.Valid() {
		errs["estado_pago"] = []string{fmt.Sprintf("%q no es una elección válida.", sub.PaymentState)}
	}
	return errs
}

// apply copies sub into l. Costs and payment fields are ignored for
// technicians; on update the stored costs are kept.
func (s *Server) apply(l *models.ServiceLog, sub submission, u models.User) {
	prevCost := map[int64]*decimal.Decimal{}
	for _, it := range l.LineItems {
		if it.ID != nil {
			prevCost[*it.ID] = it.Cost
		}
	}

	l.Client = strings.TrimSpace(sub.Client)
	l.Date = sub.Date
	l.LineItems = make([]models.LineItem, len(sub.LineItems))
	for i, it := range sub.LineItems {
		if it.ID == nil {
			s.nextItem++
			id := s.nextItem
			it.ID = &id
		}
		if !u.IsStaff {
			it.Cost = prevCost[*it.ID]
		}
		l.LineItems[i] = it
	}

	if u.IsStaff {
		if sub.PaymentState != "" {
			l.PaymentState = sub.PaymentState
		}
		l.PaymentMethod = sub.PaymentMethod
		l.DueDate = ""
		if sub.DueDate != nil {
			l.DueDate = *sub.DueDate
		}
		l.InvoiceFolio = sub.InvoiceFolio
		l.PaymentNotes = sub.PaymentNotes
	}
	now := s.Now()
	l.UpdatedAt = &now
	s.recompute(l)
}

func (s *Server) decodeSubmission(w http.ResponseWriter, r *http.Request) (submission, bool) {
	var sub submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		detail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return sub, false
	}
	if errs := sub.errors(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return sub, false
	}
	return sub, true
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.decodeSubmission(w, r)
	if !ok {
		return
	}
	u := userFrom(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLog++
	now := s.Now()
	l := &models.ServiceLog{
		ID:           s.nextLog,
		PaymentState: models.PaymentPending,
		Technician:   &models.TechnicianRef{ID: u.ID, Username: u.Username},
		CreatedAt:    &now,
	}
	s.apply(l, sub, u)
	s.logs[l.ID] = l
	writeJSON(w, http.StatusCreated, view(l, u))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.decodeSubmission(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.apply(l, sub, userFrom(r))
	writeJSON(w, http.StatusOK, view(l, userFrom(r)))
}

func (s *Server) destroy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lookup(w, r)
	if !ok {
		return
	}
	delete(s.logs, l.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markPaid(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	if !u.IsStaff {
		detail(w, http.StatusForbidden, "Usted no tiene permiso para realizar esta acción.")
		return
	}

	var req models.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}
	if req.Method == models.MethodUnset || !req.Method.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"metodo_pago": {"Este campo es requerido."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lookup(w, r)
	if !ok {
		return
	}
	l.PaymentState = models.PaymentPaid
	l.PaymentMethod = req.Method
	l.PaymentDate = req.PaymentDate
	if l.PaymentDate == "" {
		l.PaymentDate = s.Now().Format(common.DateLayout)
	}
	if req.InvoiceFolio != "" {
		l.InvoiceFolio = req.InvoiceFolio
	}
	if req.Notes != "" {
		l.PaymentNotes = req.Notes
	}
	now := s.Now()
	l.UpdatedAt = &now
	s.recompute(l)
	writeJSON(w, http.StatusOK, view(l, u))
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	if !u.IsStaff {
		detail(w, http.StatusForbidden, "Usted no tiene permiso para realizar esta acción.")
		return
	}

	q := r.URL.Query()
	contains := strings.ToLower(q.Get("cliente__icontains"))
	after := q.Get("fecha_after")
	before := q.Get("fecha_before")

	s.mu.Lock()
	all := s.sorted(u)
	s.mu.Unlock()

	rep := models.Report{
		ByState: map[models.PaymentState]models.StateSummary{},
		Records: []models.ServiceLog{},
	}
	for _, l := range all {
		if contains != "" && !strings.Contains(strings.ToLower(l.Client), contains) {
			continue
		}
		if after != "" && l.Date < after {
			continue
		}
		if before != "" && l.Date > before {
			continue
		}
		rep.Records = append(rep.Records, l)
		rep.TotalLineItems += len(l.LineItems)
		rep.TotalAmount = rep.TotalAmount.Add(l.Total)
		st := rep.ByState[l.PaymentState]
		st.Count++
		st.Amount = st.Amount.Add(l.Total)
		rep.ByState[l.PaymentState] = st
		if l.IsOverdue {
			rep.OverdueCount++
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) document(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	l, ok := s.lookup(w, r)
	var id int64
	if ok {
		id = l.ID
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bitacora_%d.pdf"`, id))
	_, _ = fmt.Fprintf(w, "%%PDF-1.4\n%% bitacora %d\n%%%%EOF\n", id)
}
