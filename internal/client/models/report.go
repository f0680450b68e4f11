package models

import (
	"net/url"

	"github.com/google/go-querystring/query"
	"github.com/shopspring/decimal"
)

// StateSummary aggregates the logs in one payment state.
type StateSummary struct {
	Count  int             `json:"cantidad"`
	Amount decimal.Decimal `json:"monto"`
}

// Report is the server-side aggregation returned by bitacoras/resumen/.
type Report struct {
	TotalLineItems int                           `json:"total_partidas"`
	TotalAmount    decimal.Decimal               `json:"costo_total"`
	ByState        map[PaymentState]StateSummary `json:"por_estado"`
	OverdueCount   int                           `json:"vencidas"`
	Records        []ServiceLog                  `json:"bitacoras_filtradas"`
}

// ReportFilter narrows a summary. Empty fields are not sent. Values are
// passed through as typed; range checks are left to the server.
type ReportFilter struct {
	ClientContains string `url:"cliente__icontains,omitempty"`
	After          string `url:"fecha_after,omitempty"`
	Before         string `url:"fecha_before,omitempty"`
}

// Values encodes the filter as query parameters.
func (f ReportFilter) Values() (url.Values, error) {
	return query.Values(f)
}
