// Command reminders prints open invoices due within seven days and the
// invoices already overdue. It changes nothing.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"killbill-service/internal/app"
	"killbill-service/internal/config"
	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/pkg/clock"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	services, err := app.BuildServices(ctx, config.Load(), logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer services.Close()

	report, err := services.Invoices.Reminders(ctx)
	if err != nil {
		logger.Fatal("failed to build reminder report", zap.Error(err))
	}

	if err := writeReport(os.Stdout, report); err != nil {
		logger.Fatal("failed to print report", zap.Error(err))
	}
}

func writeReport(out io.Writer, report *invoice.ReminderReport) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Invoices due within 7 days (%s)\n", report.Today.Format(clock.DateLayout))
	if len(report.Upcoming) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, inv := range report.Upcoming {
		fmt.Fprintf(w, "  %s\t%s\t%s\tdue %s\n", inv.InvoiceNumber, clientName(&inv), inv.Amount.StringFixed(2), inv.DueDate.Format(clock.DateLayout))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Overdue invoices")
	if len(report.Overdue) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, item := range report.Overdue {
		inv := item.Invoice
		fmt.Fprintf(w, "  %s\t%s\t%s\t%d days overdue\n", inv.InvoiceNumber, clientName(&inv), inv.Amount.StringFixed(2), item.DaysOverdue)
	}

	return w.Flush()
}

func clientName(inv *invoice.Invoice) string {
	if inv.Subscription != nil && inv.Subscription.Client != nil {
		return inv.Subscription.Client.CompanyName
	}
	return "-"
}
