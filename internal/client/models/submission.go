package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Submission is the body of a create or update. Technicians send a
// BasicSubmission; administrators send a PrivilegedSubmission carrying costs
// and payment fields. The set of implementations is closed.
type Submission interface {
	// Validate checks the submission before it is transmitted.
	Validate() error
	// Payload returns the JSON body for the API.
	Payload() any
	// Privileged reports whether the body carries staff-only fields.
	Privileged() bool
}

// BasicItem is a line item without a cost.
type BasicItem struct {
	ID          *int64
	Quantity    int
	Description string
}

// PricedItem is a line item with its cost.
type PricedItem struct {
	ID          *int64
	Quantity    int
	Description string
	Cost        decimal.Decimal
}

type BasicSubmission struct {
	Client string
	Date   string
	Items  []BasicItem
}

type PrivilegedSubmission struct {
	Client        string
	Date          string
	Items         []PricedItem
	PaymentState  PaymentState
	PaymentMethod PaymentMethod
	DueDate       string
	InvoiceFolio  string
	PaymentNotes  string
}

var (
	_ Submission = BasicSubmission{}
	_ Submission = PrivilegedSubmission{}
)

type basicPayload struct {
	Client    string     `json:"cliente"`
	Date      string     `json:"fecha"`
	LineItems []LineItem `json:"partidas"`
}

type privilegedPayload struct {
	Client        string        `json:"cliente"`
	Date          string        `json:"fecha"`
	LineItems     []LineItem    `json:"partidas"`
	PaymentState  PaymentState  `json:"estado_pago"`
	PaymentMethod PaymentMethod `json:"metodo_pago"`
	DueDate       *string       `json:"fecha_vencimiento"`
	InvoiceFolio  string        `json:"folio_factura"`
	PaymentNotes  string        `json:"notas_pago"`
}

func validateHeader(client, date string, items int) error {
	if strings.TrimSpace(client) == "" {
		return fmt.Errorf("%w: cliente is required", ErrValidation)
	}
	if !ValidDate(date) {
		return fmt.Errorf("%w: fecha must be YYYY-MM-DD", ErrValidation)
	}
	if items == 0 {
		return fmt.Errorf("%w: at least one partida is required", ErrValidation)
	}
	return nil
}

func validateItem(n, quantity int, description string) error {
	if quantity < 1 {
		return fmt.Errorf("%w: partida %d: cantidad must be at least 1", ErrValidation, n+1)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: partida %d: descripcion is required", ErrValidation, n+1)
	}
	return nil
}

func (s BasicSubmission) Validate() error {
	if err := validateHeader(s.Client, s.Date, len(s.Items)); err != nil {
		return err
	}
	for n, it := range s.Items {
		if err := validateItem(n, it.Quantity, it.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s BasicSubmission) Payload() any {
	items := make([]LineItem, len(s.Items))
	for n, it := range s.Items {
		items[n] = LineItem{ID: it.ID, Quantity: it.Quantity, Description: strings.TrimSpace(it.Description)}
	}
	return basicPayload{Client: strings.TrimSpace(s.Client), Date: s.Date, LineItems: items}
}

func (s BasicSubmission) Privileged() bool { return false }

func (s PrivilegedSubmission) Validate() error {
	if err := validateHeader(s.Client, s.Date, len(s.Items)); err != nil {
		return err
	}
	for n, it := range s.Items {
		if err := validateItem(n, it.Quantity, it.Description); err != nil {
			return err
		}
		if it.Cost.IsNegative() {
			return fmt.Errorf("%w: partida %d: costo must not be negative", ErrValidation, n+1)
		}
	}
	if !s.PaymentState.Valid() {
		return fmt.Errorf("%w: unknown estado_pago %q", ErrValidation, s.PaymentState)
	}
	if !s.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown metodo_pago %q", ErrValidation, s.PaymentMethod)
	}
	if s.DueDate != "" && !ValidDate(s.DueDate) {
		return fmt.Errorf("%w: fecha_vencimiento must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}

func (s PrivilegedSubmission) Payload() any {
	items := make([]LineItem, len(s.Items))
	for n, it := range s.Items {
		cost := it.Cost
		items[n] = LineItem{ID: it.ID, Quantity: it.Quantity, Description: strings.TrimSpace(it.Description), Cost: &cost}
	}
	p := privilegedPayload{
		Client:        strings.TrimSpace(s.Client),
		Date:          s.Date,
		LineItems:     items,
		PaymentState:  s.PaymentState,
		PaymentMethod: s.PaymentMethod,
		InvoiceFolio:  s.InvoiceFolio,
		PaymentNotes:  s.PaymentNotes,
	}
	if s.DueDate != "" {
		due := s.DueDate
		p.DueDate = &due
	}
	return p
}

func (s PrivilegedSubmission) Privileged() bool { return true }

// SubmissionFrom converts an existing log into the submission a user of the
// given role would send back, used to pre-fill the edit form.
func SubmissionFrom(l *ServiceLog, privileged bool) Submission {
	if !privileged {
		items := make([]BasicItem, len(l.LineItems))
		for n, it := range l.LineItems {
			items[n] = BasicItem{ID: it.ID, Quantity: it.Quantity, Description: it.Description}
		}
		return BasicSubmission{Client: l.Client, Date: l.Date, Items: items}
	}

	items := make([]PricedItem, len(l.LineItems))
	for n, it := range l.LineItems {
		p := PricedItem{ID: it.ID, Quantity: it.Quantity, Description: it.Description}
		if it.Cost != nil {
			p.Cost = *it.Cost
		}
		items[n] = p
	}
	state := l.PaymentState
	if state == "" {
		state = PaymentPending
	}
	return PrivilegedSubmission{
		Client:        l.Client,
		Date:          l.Date,
		Items:         items,
		PaymentState:  state,
		PaymentMethod: l.PaymentMethod,
		DueDate:       l.DueDate,
		InvoiceFolio:  l.InvoiceFolio,
		PaymentNotes:  l.PaymentNotes,
	}
}
