package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/common"
	"github.com/dmitrijs2005/bitacora/internal/filex"
)

// stateBadge renders the payment state and the server's overdue flag.
func stateBadge(l *models.ServiceLog) string {
	s := l.PaymentState.Label()
	if l.IsOverdue {
		s += " VENCIDO"
	}
	return s
}

func displayedCost(l *models.ServiceLog) string {
	sum, ok := l.DisplayedCost()
	if !ok {
		return "-"
	}
	return "$" + sum.StringFixed(2)
}

// writeTable prints logs as a table. Costs are shown to admins only.
func writeTable(w io.Writer, logs []models.ServiceLog, admin bool, link func(int64) string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tFECHA\tCLIENTE\tPARTIDAS\tESTADO"
	if admin {
		header += "\tCOSTO"
	}
	if link != nil {
		header += "\tDOCUMENTO"
	}
	fmt.Fprintln(tw, header)

	for i := range logs {
		l := &logs[i]
		row := fmt.Sprintf("%d\t%s\t%s\t%d\t%s", l.ID, l.Date, l.Client, len(l.LineItems), stateBadge(l))
		if admin {
			row += "\t" + displayedCost(l)
		}
		if link != nil {
			row += "\t" + link(l.ID)
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
}

// List loads every service log visible to the user.
func (a *App) List(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	logs, err := a.logService.List(ctx)
	if err != nil {
		return a.fail(ctx, "list", err)
	}
	if len(logs) == 0 {
		a.println("No service logs.")
		return nil
	}
	writeTable(a.out, logs, a.isAdmin(), a.logService.DocumentURL)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.idArg(args)
	if err != nil {
		return err
	}

	l, err := a.logService.Get(ctx, id)
	if err != nil {
		return a.fail(ctx, "show", err)
	}
	a.writeDetail(l)
	return nil
}

func (a *App) writeDetail(l *models.ServiceLog) {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Bitácora\t#%d\n", l.ID)
	fmt.Fprintf(tw, "Cliente\t%s\n", l.Client)
	fmt.Fprintf(tw, "Fecha\t%s\n", l.Date)
	fmt.Fprintf(tw, "Técnico\t%s\n", l.Technician.String())
	fmt.Fprintf(tw, "Estado\t%s\n", stateBadge(l))
	if a.isAdmin() {
		fmt.Fprintf(tw, "Método de pago\t%s\n", l.PaymentMethod.Label())
		fmt.Fprintf(tw, "Fecha de pago\t%s\n", orDash(l.PaymentDate))
		fmt.Fprintf(tw, "Vencimiento\t%s\n", orDash(l.DueDate))
		fmt.Fprintf(tw, "Folio factura\t%s\n", orDash(l.InvoiceFolio))
		fmt.Fprintf(tw, "Notas\t%s\n", orDash(l.PaymentNotes))
		fmt.Fprintf(tw, "Total\t$%s\n", l.Total.StringFixed(2))
	}
	if l.CreatedAt != nil {
		fmt.Fprintf(tw, "Creada\t%s\n", l.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if l.UpdatedAt != nil {
		fmt.Fprintf(tw, "Actualizada\t%s\n", l.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(tw, "Documento\t%s\n", a.logService.DocumentURL(l.ID))
	_ = tw.Flush()

	a.println()
	tw = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCANT.\tDESCRIPCIÓN\tCOSTO")
	for n, it := range l.LineItems {
		cost := "-"
		if it.Cost != nil {
			cost = "$" + it.Cost.StringFixed(2)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", n+1, it.Quantity, it.Description, cost)
	}
	_ = tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Link prints the URL of the server-generated document of a record.
func (a *App) Link(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.idArg(args)
	if err != nil {
		return err
	}
	a.println(a.logService.DocumentURL(id))
	return nil
}

// Download saves the document of a record under the export directory.
func (a *App) Download(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.idArg(args)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		return a.fail(ctx, "download", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("bitacora_%d.pdf", id))

	f, err := os.Create(path)
	if err != nil {
		return a.fail(ctx, "download", err)
	}

	n, err := a.logService.DownloadDocument(ctx, id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return a.fail(ctx, "download", err)
	}

	a.printf("Saved %s (%d bytes)\n", path, n)
	return nil
}

// Delete asks for confirmation, deletes and reloads the list.
func (a *App) Delete(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.idArg(args)
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete service log #%d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return common.ErrCancelled
	}

	if err := a.logService.Delete(ctx, id); err != nil {
		return a.fail(ctx, "delete", err)
	}
	a.printf("Service log #%d deleted.\n", id)
	return a.List(ctx)
}
