package invoice

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/settings"
	"killbill-service/internal/pkg/clock"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Renderer produces the printable HTML invoice.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format(clock.DateLayout) },
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type renderData struct {
	Invoice  *invoice.Invoice
	Branding *settings.InvoiceConfiguration
	Company  string
	Contact  string
	Email    string
	Plan     string
	Cycle    string
	Amount   string
}

// Render writes inv using branding. A nil branding uses the defaults.
func (r *Renderer) Render(inv *invoice.Invoice, branding *settings.InvoiceConfiguration) ([]byte, error) {
	if branding == nil {
		branding = settings.DefaultInvoice()
	}

	data := renderData{
		Invoice:  inv,
		Branding: branding,
		Amount:   inv.Amount.StringFixed(2),
	}
	if sub := inv.Subscription; sub != nil {
		data.Cycle = string(sub.BillingCycle)
		if sub.Client != nil {
			data.Company = sub.Client.CompanyName
			data.Contact = sub.Client.ContactPerson
			data.Email = sub.Client.Email
		}
		if sub.Plan != nil {
			data.Plan = sub.Plan.Name
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "invoice.html.tmpl", data); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// Render loads the invoice and renders it as printable HTML.
func (s *InvoiceService) Render(ctx context.Context, id int64, branding *settings.InvoiceConfiguration) ([]byte, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(inv, branding)
}
