package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/bitacora/internal/common"
)

// PaymentState is the billing status of a service log.
type PaymentState string

const (
	PaymentPending  PaymentState = "pendiente"
	PaymentQuoted   PaymentState = "cotizado"
	PaymentInvoiced PaymentState = "facturado"
	PaymentPaid     PaymentState = "pagado"
	PaymentOverdue  PaymentState = "vencido"
)

var paymentStateLabels = map[PaymentState]string{
	PaymentPending:  "Pendiente",
	PaymentQuoted:   "Cotizado",
	PaymentInvoiced: "Facturado",
	PaymentPaid:     "Pagado",
	PaymentOverdue:  "Vencido",
}

// PaymentStates lists every state in workflow order.
func PaymentStates() []PaymentState {
	return []PaymentState{PaymentPending, PaymentQuoted, PaymentInvoiced, PaymentPaid, PaymentOverdue}
}

func (s PaymentState) Valid() bool {
	_, ok := paymentStateLabels[s]
	return ok
}

func (s PaymentState) Label() string {
	if l, ok := paymentStateLabels[s]; ok {
		return l
	}
	return string(s)
}

// PaymentMethod is how a service log was paid. The zero value means unset.
type PaymentMethod string

const (
	MethodUnset    PaymentMethod = ""
	MethodCash     PaymentMethod = "efectivo"
	MethodTransfer PaymentMethod = "transferencia"
	MethodCheck    PaymentMethod = "cheque"
	MethodCard     PaymentMethod = "tarjeta"
	MethodCredit   PaymentMethod = "credito"
)

var paymentMethodLabels = map[PaymentMethod]string{
	MethodCash:     "Efectivo",
	MethodTransfer: "Transferencia",
	MethodCheck:    "Cheque",
	MethodCard:     "Tarjeta",
	MethodCredit:   "Crédito",
}

// PaymentMethods lists the selectable methods, unset excluded.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodTransfer, MethodCheck, MethodCard, MethodCredit}
}

// Valid reports whether m is a known method or unset.
func (m PaymentMethod) Valid() bool {
	if m == MethodUnset {
		return true
	}
	_, ok := paymentMethodLabels[m]
	return ok
}

func (m PaymentMethod) Label() string {
	if m == MethodUnset {
		return "-"
	}
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}
	return string(m)
}

// MarkPaidRequest is the body of POST bitacoras/{id}/marcar_pagado/.
type MarkPaidRequest struct {
	Method       PaymentMethod `json:"metodo_pago"`
	PaymentDate  string        `json:"fecha_pago,omitempty"`
	InvoiceFolio string        `json:"folio_factura,omitempty"`
	Notes        string        `json:"notas_pago,omitempty"`
}

// NewMarkPaidRequest returns the dialog defaults: cash, paid today.
func NewMarkPaidRequest(now time.Time) MarkPaidRequest {
	return MarkPaidRequest{Method: MethodCash, PaymentDate: now.Format(common.DateLayout)}
}

func (r MarkPaidRequest) Validate() error {
	if r.Method == MethodUnset {
		return fmt.Errorf("%w: metodo_pago is required", ErrValidation)
	}
	if !r.Method.Valid() {
		return fmt.Errorf("%w: unknown metodo_pago %q", ErrValidation, r.Method)
	}
	if r.PaymentDate != "" && !ValidDate(r.PaymentDate) {
		return fmt.Errorf("%w: fecha_pago must be YYYY-MM-DD", ErrValidation)
	}
	return nil
}
