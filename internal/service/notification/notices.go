package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"killbill-service/internal/domain/invoice"
	"killbill-service/internal/domain/notification"
	"killbill-service/internal/domain/subscription"
	"killbill-service/internal/pkg/clock"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	kindCreated = "subscription_created"
	kindRenewal = "invoice_reminder"
	kindExpired = "subscription_expired"
)

// Notices renders the lifecycle emails.
type Notices struct {
	siteName string
	html     map[string]*htmltemplate.Template
	text     map[string]*texttemplate.Template
}

func NewNotices(siteName string) (*Notices, error) {
	n := &Notices{
		siteName: siteName,
		html:     make(map[string]*htmltemplate.Template),
		text:     make(map[string]*texttemplate.Template),
	}

	for _, kind := range []string{kindCreated, kindRenewal, kindExpired} {
		h, err := htmltemplate.ParseFS(templateFS, "templates/layout.html.tmpl", "templates/"+kind+".html.tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s html template: %w", kind, err)
		}
		t, err := texttemplate.ParseFS(templateFS, "templates/"+kind+".txt.tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s text template: %w", kind, err)
		}
		n.html[kind] = h
		n.text[kind] = t
	}
	return n, nil
}

type noticeData struct {
	SiteName      string
	CompanyName   string
	ContactPerson string
	PlanName      string
	BillingCycle  subscription.BillingCycle
	Amount        string
	StartDate     string
	EndDate       string
	InvoiceNumber string
	DueDate       string
}

func (n *Notices) dataFor(sub *subscription.Subscription) noticeData {
	d := noticeData{
		SiteName:     n.siteName,
		BillingCycle: sub.BillingCycle,
		StartDate:    sub.StartDate.Format(clock.DateLayout),
	}
	if sub.EndDate != nil {
		d.EndDate = sub.EndDate.Format(clock.DateLayout)
	}
	if sub.Client != nil {
		d.CompanyName = sub.Client.CompanyName
		d.ContactPerson = sub.Client.ContactPerson
	}
	if sub.Plan != nil {
		d.PlanName = sub.Plan.Name
		d.Amount = sub.Plan.PriceFor(sub.BillingCycle).StringFixed(2)
	}
	return d
}

func (n *Notices) render(kind, subject string, data noticeData, to []string) (notification.Message, error) {
	var text, html bytes.Buffer
	if err := n.text[kind].Execute(&text, data); err != nil {
		return notification.Message{}, fmt.Errorf("failed to render %s: %w", kind, err)
	}
	if err := n.html[kind].ExecuteTemplate(&html, "layout", data); err != nil {
		return notification.Message{}, fmt.Errorf("failed to render %s: %w", kind, err)
	}
	return notification.Message{Subject: subject, Text: text.String(), HTML: html.String(), To: to}, nil
}

func recipients(sub *subscription.Subscription) []string {
	if sub.Client == nil {
		return nil
	}
	return []string{sub.Client.Email}
}

// SubscriptionCreated is the welcome email sent when a subscription is created.
func (n *Notices) SubscriptionCreated(sub *subscription.Subscription) (notification.Message, error) {
	subject := fmt.Sprintf("Welcome to %s - Subscription Created", n.siteName)
	return n.render(kindCreated, subject, n.dataFor(sub), recipients(sub))
}

// RenewalReminder announces the renewal invoice for the closing period.
func (n *Notices) RenewalReminder(sub *subscription.Subscription, inv *invoice.Invoice) (notification.Message, error) {
	data := n.dataFor(sub)
	data.InvoiceNumber = inv.InvoiceNumber
	data.Amount = inv.Amount.StringFixed(2)
	data.DueDate = inv.DueDate.Format(clock.DateLayout)

	subject := fmt.Sprintf("Invoice %s: Subscription Renewal Due", inv.InvoiceNumber)
	return n.render(kindRenewal, subject, data, recipients(sub))
}

// SubscriptionExpired tells the client the period has ended.
func (n *Notices) SubscriptionExpired(sub *subscription.Subscription) (notification.Message, error) {
	return n.render(kindExpired, "Subscription Expired", n.dataFor(sub), recipients(sub))
}
