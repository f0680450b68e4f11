package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/common"
	"github.com/shopspring/decimal"
)

// logForm is the editable state behind the add and edit screens. Payment
// fields and costs are only prompted for administrators.
type logForm struct {
	client  string
	date    string
	items   []models.PricedItem
	state   models.PaymentState
	method  models.PaymentMethod
	dueDate string
	folio   string
	notes   string
}

func formFrom(sub models.Submission) logForm {
	switch s := sub.(type) {
	case models.PrivilegedSubmission:
		return logForm{
			client:  s.Client,
			date:    s.Date,
			items:   append([]models.PricedItem(nil), s.Items...),
			state:   s.PaymentState,
			method:  s.PaymentMethod,
			dueDate: s.DueDate,
			folio:   s.InvoiceFolio,
			notes:   s.PaymentNotes,
		}
	case models.BasicSubmission:
		f := logForm{client: s.Client, date: s.Date}
		for _, it := range s.Items {
			f.items = append(f.items, models.PricedItem{ID: it.ID, Quantity: it.Quantity, Description: it.Description})
		}
		return f
	}
	return logForm{}
}

func (f logForm) submission(admin bool) models.Submission {
	if admin {
		return models.PrivilegedSubmission{
			Client:        f.client,
			Date:          f.date,
			Items:         f.items,
			PaymentState:  f.state,
			PaymentMethod: f.method,
			DueDate:       f.dueDate,
			InvoiceFolio:  f.folio,
			PaymentNotes:  f.notes,
		}
	}
	items := make([]models.BasicItem, len(f.items))
	for n, it := range f.items {
		items[n] = models.BasicItem{ID: it.ID, Quantity: it.Quantity, Description: it.Description}
	}
	return models.BasicSubmission{Client: f.client, Date: f.date, Items: items}
}

func (a *App) ask(prompt, def string) (string, error) {
	return askDefault(a.reader, prompt, def, a.out)
}

func (a *App) askInt(prompt string, def int) (int, error) {
	s, err := a.ask(prompt, strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", models.ErrValidation, prompt, s)
	}
	return n, nil
}

func (a *App) askDecimal(prompt string, def decimal.Decimal) (decimal.Decimal, error) {
	s, err := a.ask(prompt, def.StringFixed(2))
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %q is not an amount", models.ErrValidation, prompt, s)
	}
	return d, nil
}

func optionList[T ~string](opts []T) string {
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		if o != "" {
			names = append(names, string(o))
		}
	}
	return strings.Join(names, ", ")
}

// askItem edits one line item in place. keep is false when the user asked
// to remove it by answering "-".
func (a *App) askItem(n int, it *models.PricedItem, admin bool) (keep bool, err error) {
	prompt := fmt.Sprintf("Partida %d: descripción", n)
	if it.ID != nil {
		prompt += " ('-' to remove)"
	}
	desc, err := a.ask(prompt, it.Description)
	if err != nil {
		return false, err
	}
	if desc == "-" || desc == "" {
		return false, nil
	}
	it.Description = desc

	qty := it.Quantity
	if qty == 0 {
		qty = 1
	}
	if it.Quantity, err = a.askInt(fmt.Sprintf("Partida %d: cantidad", n), qty); err != nil {
		return false, err
	}

	if admin {
		if it.Cost, err = a.askDecimal(fmt.Sprintf("Partida %d: costo", n), it.Cost); err != nil {
			return false, err
		}
	}
	return true, nil
}

// fill walks the user through every field of f.
func (a *App) fill(f *logForm, admin bool) error {
	var err error
	if f.client, err = a.ask("Cliente", f.client); err != nil {
		return err
	}
	if f.date, err = a.ask("Fecha (YYYY-MM-DD)", f.date); err != nil {
		return err
	}

	items := make([]models.PricedItem, 0, len(f.items))
	for _, it := range f.items {
		keep, err := a.askItem(len(items)+1, &it, admin)
		if err != nil {
			return err
		}
		if keep {
			items = append(items, it)
		}
	}
	a.println("New line items (empty description to finish):")
	for {
		var it models.PricedItem
		keep, err := a.askItem(len(items)+1, &it, admin)
		if err != nil {
			return err
		}
		if !keep {
			break
		}
		items = append(items, it)
	}
	f.items = items

	if !admin {
		return nil
	}

	state, err := a.ask("Estado de pago ("+optionList(models.PaymentStates())+")", string(f.state))
	if err != nil {
		return err
	}
	f.state = models.PaymentState(state)

	method, err := a.ask("Método de pago ("+optionList(models.PaymentMethods())+", '-' for none)", string(f.method))
	if err != nil {
		return err
	}
	if method == "-" {
		method = ""
	}
	f.method = models.PaymentMethod(method)

	if f.dueDate, err = a.ask("Fecha de vencimiento (YYYY-MM-DD, '-' for none)", f.dueDate); err != nil {
		return err
	}
	if f.dueDate == "-" {
		f.dueDate = ""
	}
	if f.folio, err = a.ask("Folio de factura", f.folio); err != nil {
		return err
	}
	if f.notes, err = a.ask("Notas de pago", f.notes); err != nil {
		return err
	}
	return nil
}

// Add creates a service log from a prompted form.
func (a *App) Add(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	admin := a.isAdmin()

	f := logForm{date: a.now().Format(common.DateLayout), state: models.PaymentPending}
	if err := a.fill(&f, admin); err != nil {
		return a.fail(ctx, "add", err)
	}

	created, err := a.logService.Create(ctx, f.submission(admin))
	if err != nil {
		return a.fail(ctx, "add", err)
	}
	a.printf("Service log #%d created.\n", created.ID)
	return a.List(ctx)
}

// Edit pre-fills the form from the stored record and sends it back.
func (a *App) Edit(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.idArg(args)
	if err != nil {
		return err
	}
	admin := a.isAdmin()

	current, err := a.logService.Get(ctx, id)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}

	f := formFrom(models.SubmissionFrom(current, admin))
	if err := a.fill(&f, admin); err != nil {
		return a.fail(ctx, "edit", err)
	}

	if _, err := a.logService.Update(ctx, id, f.submission(admin)); err != nil {
		return a.fail(ctx, "edit", err)
	}
	a.printf("Service log #%d updated.\n", id)
	return a.List(ctx)
}
