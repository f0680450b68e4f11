package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/bitacora/internal/common"
	"github.com/shopspring/decimal"
)

// ErrValidation marks a submission rejected before it reaches the network.
var ErrValidation = errors.New("validation error")

// ValidDate reports whether s is a calendar date in the API layout.
func ValidDate(s string) bool {
	_, err := time.Parse(common.DateLayout, s)
	return err == nil
}

// LineItem (partida) is one billable unit of a service log.
// ID is nil until the server persists the item. Cost is only sent to staff.
type LineItem struct {
	ID          *int64           `json:"id,omitempty"`
	Quantity    int              `json:"cantidad"`
	Description string           `json:"descripcion"`
	Cost        *decimal.Decimal `json:"costo,omitempty"`
}

// TechnicianRef is the technician a log belongs to. The API may send it as
// a bare id, a username, or an object; all three are accepted.
type TechnicianRef struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

func (t *TechnicianRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = TechnicianRef{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = TechnicianRef{Username: s}
		return nil
	case b[0] == '{':
		type plain TechnicianRef
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*t = TechnicianRef(p)
		return nil
	default:
		id, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("tecnico: %w", err)
		}
		*t = TechnicianRef{ID: id}
		return nil
	}
}

func (t *TechnicianRef) String() string {
	switch {
	case t == nil:
		return "-"
	case t.Username != "":
		return t.Username
	case t.ID != 0:
		return "#" + strconv.FormatInt(t.ID, 10)
	default:
		return "-"
	}
}

// ServiceLog (bitácora) is one record of work done for a client on a date.
// Total and IsOverdue are computed by the server.
type ServiceLog struct {
	ID            int64           `json:"id"`
	Client        string          `json:"cliente"`
	Date          string          `json:"fecha"`
	LineItems     []LineItem      `json:"partidas"`
	PaymentState  PaymentState    `json:"estado_pago"`
	PaymentMethod PaymentMethod   `json:"metodo_pago"`
	PaymentDate   string          `json:"fecha_pago"`
	InvoiceFolio  string          `json:"folio_factura"`
	DueDate       string          `json:"fecha_vencimiento"`
	PaymentNotes  string          `json:"notas_pago"`
	Total         decimal.Decimal `json:"total"`
	IsOverdue     bool            `json:"esta_vencido"`
	Technician    *TechnicianRef  `json:"tecnico"`
	CreatedAt     *time.Time      `json:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at"`
}

// CanMarkPaid reports whether the "mark as paid" action should be offered.
// The check is advisory; the server authorizes the transition.
func (l *ServiceLog) CanMarkPaid(isAdmin bool) bool {
	return isAdmin && l.PaymentState != PaymentPaid
}

// DisplayedCost sums the costs visible on the line items. It only backs the
// per-row figure of tables; Total is the authoritative amount. ok is false
// when no item carries a cost (non-staff view).
func (l *ServiceLog) DisplayedCost() (sum decimal.Decimal, ok bool) {
	for _, it := range l.LineItems {
		if it.Cost != nil {
			sum = sum.Add(*it.Cost)
			ok = true
		}
	}
	return sum, ok
}
