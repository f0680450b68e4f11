package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
)

// Pay runs the "mark as paid" dialog: method (cash by default), payment date
// (today by default), invoice folio and notes.
func (a *App) Pay(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := a.idArg(args)
	if err != nil {
		return err
	}

	current, err := a.logService.Get(ctx, id)
	if err != nil {
		return a.fail(ctx, "pay", err)
	}
	if !current.CanMarkPaid(a.isAdmin()) {
		a.printf("Service log #%d is already paid.\n", id)
		return nil
	}

	req := models.NewMarkPaidRequest(a.now())
	method, err := a.ask("Método de pago ("+optionList(models.PaymentMethods())+")", string(req.Method))
	if err != nil {
		return err
	}
	req.Method = models.PaymentMethod(method)
	if req.PaymentDate, err = a.ask("Fecha de pago (YYYY-MM-DD)", req.PaymentDate); err != nil {
		return err
	}
	if req.InvoiceFolio, err = a.ask("Folio de factura", current.InvoiceFolio); err != nil {
		return err
	}
	if req.Notes, err = GetMultiline(a.reader, "Notas de pago", a.out); err != nil {
		return err
	}

	paid, err := a.logService.MarkPaid(ctx, id, req)
	if err != nil {
		return a.fail(ctx, "pay", err)
	}
	a.println(fmt.Sprintf("Service log #%d marked as %s (%s).", paid.ID, paid.PaymentState.Label(), paid.PaymentMethod.Label()))
	return a.List(ctx)
}
