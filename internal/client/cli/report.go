package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/client/report"
	"github.com/dmitrijs2005/bitacora/internal/filex"
)

// Report prompts for the filter and shows the summary.
func (a *App) Report(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	var (
		f   models.ReportFilter
		err error
	)
	if f.ClientContains, err = a.ask("Cliente contiene", ""); err != nil {
		return err
	}
	if f.After, err = a.ask("Desde (YYYY-MM-DD)", ""); err != nil {
		return err
	}
	if f.Before, err = a.ask("Hasta (YYYY-MM-DD)", ""); err != nil {
		return err
	}
	export, err := confirm(a.reader, "Export to PDF?", a.out)
	if err != nil {
		return err
	}
	return a.RunReport(ctx, f, export)
}

// RunReport loads the summary for f, prints it and optionally writes a PDF
// under the export directory. Each call issues exactly one request.
func (a *App) RunReport(ctx context.Context, f models.ReportFilter, exportPDF bool) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}

	rep, err := a.logService.Summary(ctx, f)
	if err != nil {
		a.log.Warn(ctx, "report failed", "error", err)
		a.println("error loading report")
		return err
	}

	a.writeReport(rep, f)

	if !exportPDF {
		return nil
	}
	path, err := a.exportReport(rep, f)
	if err != nil {
		return a.fail(ctx, "export report", err)
	}
	a.printf("PDF saved to %s\n", path)
	return nil
}

func (a *App) writeReport(rep *models.Report, f models.ReportFilter) {
	a.printf("%s: %s\n\n", report.Title, report.FilterLine(f))

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total de partidas\t%d\n", rep.TotalLineItems)
	fmt.Fprintf(tw, "Costo total\t$%s\n", rep.TotalAmount.StringFixed(2))
	fmt.Fprintf(tw, "Vencidas\t%d\n", rep.OverdueCount)
	_ = tw.Flush()

	a.println()
	tw = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ESTADO\tCANTIDAD\tMONTO")
	for _, st := range models.PaymentStates() {
		sum, ok := rep.ByState[st]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t$%s\n", st.Label(), sum.Count, sum.Amount.StringFixed(2))
	}
	_ = tw.Flush()

	a.println()
	if len(rep.Records) == 0 {
		a.println("No service logs match the filter.")
		return
	}
	writeTable(a.out, rep.Records, true, nil)
}

func (a *App) exportReport(rep *models.Report, f models.ReportFilter) (string, error) {
	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("reporte_%s_%s.pdf", filex.SafeName(f.ClientContains), a.now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	err = report.WritePDF(file, rep, f)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
