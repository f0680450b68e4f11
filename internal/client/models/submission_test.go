package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBasic() BasicSubmission {
	return BasicSubmission{
		Client: "ACME",
		Date:   "2024-01-01",
		Items:  []BasicItem{{Quantity: 2, Description: "filter"}},
	}
}

func validPrivileged() PrivilegedSubmission {
	return PrivilegedSubmission{
		Client:       "ACME",
		Date:         "2024-01-01",
		Items:        []PricedItem{{Quantity: 2, Description: "filter", Cost: decimal.NewFromInt(50)}},
		PaymentState: PaymentPending,
	}
}

func TestBasicSubmission_Validate(t *testing.T) {
	require.NoError(t, validBasic().Validate())

	tests := []struct {
		name   string
		mutate func(*BasicSubmission)
	}{
		{"blank client", func(s *BasicSubmission) { s.Client = "  " }},
		{"bad date", func(s *BasicSubmission) { s.Date = "2024-13-01" }},
		{"no items", func(s *BasicSubmission) { s.Items = nil }},
		{"zero quantity", func(s *BasicSubmission) { s.Items[0].Quantity = 0 }},
		{"blank description", func(s *BasicSubmission) { s.Items[0].Description = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validBasic()
			tt.mutate(&s)
			require.ErrorIs(t, s.Validate(), ErrValidation)
		})
	}
}

func TestPrivilegedSubmission_Validate(t *testing.T) {
	require.NoError(t, validPrivileged().Validate())

	tests := []struct {
		name   string
		mutate func(*PrivilegedSubmission)
	}{
		{"negative cost", func(s *PrivilegedSubmission) { s.Items[0].Cost = decimal.NewFromInt(-1) }},
		{"missing state", func(s *PrivilegedSubmission) { s.PaymentState = "" }},
		{"unknown method", func(s *PrivilegedSubmission) { s.PaymentMethod = "trueque" }},
		{"bad due date", func(s *PrivilegedSubmission) { s.DueDate = "pronto" }},
		{"header still checked", func(s *PrivilegedSubmission) { s.Client = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validPrivileged()
			tt.mutate(&s)
			require.ErrorIs(t, s.Validate(), ErrValidation)
		})
	}
}

func TestBasicSubmission_PayloadHasNoStaffFields(t *testing.T) {
	b, err := json.Marshal(validBasic().Payload())
	require.NoError(t, err)

	assert.JSONEq(t, `{
	  "cliente": "ACME",
	  "fecha": "2024-01-01",
	  "partidas": [{"cantidad": 2, "descripcion": "filter"}]
	}`, string(b))
	assert.False(t, validBasic().Privileged())
}

func TestPrivilegedSubmission_Payload(t *testing.T) {
	id := int64(4)
	s := validPrivileged()
	s.Items[0].ID = &id
	s.PaymentMethod = MethodTransfer
	s.InvoiceFolio = "A-1"

	b, err := json.Marshal(s.Payload())
	require.NoError(t, err)

	assert.JSONEq(t, `{
	  "cliente": "ACME",
	  "fecha": "2024-01-01",
	  "partidas": [{"id": 4, "cantidad": 2, "descripcion": "filter", "costo": "50"}],
	  "estado_pago": "pendiente",
	  "metodo_pago": "transferencia",
	  "fecha_vencimiento": null,
	  "folio_factura": "A-1",
	  "notas_pago": ""
	}`, string(b))
	assert.True(t, s.Privileged())
}

func TestSubmissionFrom_RoundTripsRecordByRole(t *testing.T) {
	var l ServiceLog
	require.NoError(t, json.Unmarshal([]byte(adminRecordJSON), &l))

	basic, ok := SubmissionFrom(&l, false).(BasicSubmission)
	require.True(t, ok)
	require.NoError(t, basic.Validate())
	assert.Equal(t, "Taller López", basic.Client)
	require.Len(t, basic.Items, 2)
	assert.Equal(t, int64(11), *basic.Items[0].ID)

	priv, ok := SubmissionFrom(&l, true).(PrivilegedSubmission)
	require.True(t, ok)
	require.NoError(t, priv.Validate())
	assert.Equal(t, PaymentInvoiced, priv.PaymentState)
	assert.Equal(t, "A-12345", priv.InvoiceFolio)
	assert.Equal(t, "2024-02-01", priv.DueDate)
	assert.True(t, decimal.NewFromInt(120).Equal(priv.Items[1].Cost))
}

func TestSubmissionFrom_DefaultsMissingState(t *testing.T) {
	l := &ServiceLog{Client: "x", Date: "2024-01-01", LineItems: []LineItem{{Quantity: 1, Description: "d"}}}
	priv := SubmissionFrom(l, true).(PrivilegedSubmission)
	assert.Equal(t, PaymentPending, priv.PaymentState)
}

func TestReportFilter_Values(t *testing.T) {
	v, err := ReportFilter{}.Values()
	require.NoError(t, err)
	assert.Empty(t, v.Encode())

	// Inverted range is passed through untouched.
	v, err = ReportFilter{ClientContains: "acme", After: "2024-12-31", Before: "2024-01-01"}.Values()
	require.NoError(t, err)
	assert.Equal(t, "acme", v.Get("cliente__icontains"))
	assert.Equal(t, "2024-12-31", v.Get("fecha_after"))
	assert.Equal(t, "2024-01-01", v.Get("fecha_before"))
}

func TestReport_Decode(t *testing.T) {
	var r Report
	require.NoError(t, json.Unmarshal([]byte(`{
	  "total_partidas": 3,
	  "costo_total": "270.00",
	  "por_estado": {"pendiente": {"cantidad": 1, "monto": "50.00"}, "pagado": {"cantidad": 1, "monto": 220}},
	  "vencidas": 1,
	  "bitacoras_filtradas": [{"id": 1, "cliente": "ACME", "fecha": "2024-01-01", "partidas": []}]
	}`), &r))

	assert.Equal(t, 3, r.TotalLineItems)
	assert.Equal(t, "270.00", r.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, r.ByState[PaymentPending].Count)
	assert.True(t, decimal.NewFromInt(220).Equal(r.ByState[PaymentPaid].Amount))
	assert.Equal(t, 1, r.OverdueCount)
	require.Len(t, r.Records, 1)
}
