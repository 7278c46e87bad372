// internal/domain/settings/entity.go
package settings

import (
	"context"
	"time"
)

const (
	DefaultDaysBeforeExpiry = 7
	MinDaysBeforeExpiry     = 1
	MaxDaysBeforeExpiry     = 90
)

// SiteConfiguration is a singleton row (id 1).
type SiteConfiguration struct {
	ID                      int64     `json:"-" db:"id"`
	InvoiceDaysBeforeExpiry int       `json:"invoice_days_before_expiry" db:"invoice_days_before_expiry" validate:"min=1,max=90"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

func DefaultSite() *SiteConfiguration {
	return &SiteConfiguration{ID: 1, InvoiceDaysBeforeExpiry: DefaultDaysBeforeExpiry}
}

type Theme string

const (
	ThemeClassic Theme = "classic"
	ThemeModern  Theme = "modern"
	ThemeMinimal Theme = "minimal"
)

// InvoiceConfiguration is a singleton row (id 1) holding invoice branding.
type InvoiceConfiguration struct {
	ID                int64     `json:"-" db:"id"`
	CompanyName       string    `json:"company_name" db:"company_name" validate:"max=255"`
	CompanyAddress    string    `json:"company_address" db:"company_address"`
	CompanyPhone      string    `json:"company_phone" db:"company_phone" validate:"max=50"`
	CompanyEmail      string    `json:"company_email" db:"company_email" validate:"omitempty,email"`
	CompanyTIN        string    `json:"company_tin" db:"company_tin" validate:"max=50"`
	BankName          string    `json:"bank_name" db:"bank_name" validate:"max=255"`
	BankAccountNumber string    `json:"bank_account_number" db:"bank_account_number" validate:"max=100"`
	BankAccountName   string    `json:"bank_account_name" db:"bank_account_name" validate:"max=255"`
	LogoURL           string    `json:"logo_url" db:"logo_url" validate:"omitempty,url"`
	Theme             Theme     `json:"theme" db:"theme" validate:"oneof=classic modern minimal"`
	FontFamily        string    `json:"font_family" db:"font_family" validate:"max=100"`
	PrimaryColor      string    `json:"primary_color" db:"primary_color" validate:"hexcolor"`
	SecondaryColor    string    `json:"secondary_color" db:"secondary_color" validate:"hexcolor"`
	BackgroundColor   string    `json:"background_color" db:"background_color" validate:"hexcolor"`
	AccentColor       string    `json:"accent_color" db:"accent_color" validate:"hexcolor"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

func DefaultInvoice() *InvoiceConfiguration {
	return &InvoiceConfiguration{
		ID:              1,
		Theme:           ThemeClassic,
		FontFamily:      "Helvetica, Arial, sans-serif",
		PrimaryColor:    "#1f2937",
		SecondaryColor:  "#6b7280",
		BackgroundColor: "#ffffff",
		AccentColor:     "#2563eb",
	}
}

// Settings is the operational configuration a process loads once and passes
// to whatever needs it.
type Settings struct {
	Site    *SiteConfiguration    `json:"site"`
	Invoice *InvoiceConfiguration `json:"invoice"`
}

type Repository interface {
	// GetSite returns the singleton, inserting the defaults on first use.
	GetSite(ctx context.Context) (*SiteConfiguration, error)
	SaveSite(ctx context.Context, cfg *SiteConfiguration) error
	// GetInvoice returns the singleton, inserting the defaults on first use.
	GetInvoice(ctx context.Context) (*InvoiceConfiguration, error)
	SaveInvoice(ctx context.Context, cfg *InvoiceConfiguration) error
}
