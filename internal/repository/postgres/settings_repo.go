// internal/repository/postgres/settings_repo.go
package postgres

import (
	"context"
	"time"

	"killbill-service/internal/domain/settings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSite returns the singleton row, inserting defaults the first time.
func (r *SettingsRepository) GetSite(ctx context.Context) (*settings.SiteConfiguration, error) {
	def := settings.DefaultSite()
	_, err := r.db.Exec(ctx,
		`INSERT INTO site_configuration (id, invoice_days_before_expiry) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`,
		def.InvoiceDaysBeforeExpiry)
	if err != nil {
		return nil, mapError(err, "initialise site configuration")
	}

	var cfg settings.SiteConfiguration
	err = r.db.QueryRow(ctx,
		`SELECT id, invoice_days_before_expiry, updated_at FROM site_configuration WHERE id = 1`,
	).Scan(&cfg.ID, &cfg.InvoiceDaysBeforeExpiry, &cfg.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "read site configuration")
	}
	return &cfg, nil
}

func (r *SettingsRepository) SaveSite(ctx context.Context, cfg *settings.SiteConfiguration) error {
	cfg.ID = 1
	cfg.UpdatedAt = time.Now()
	_, err := r.db.Exec(ctx, `
		INSERT INTO site_configuration (id, invoice_days_before_expiry, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET invoice_days_before_expiry = EXCLUDED.invoice_days_before_expiry, updated_at = EXCLUDED.updated_at
	`, cfg.InvoiceDaysBeforeExpiry, cfg.UpdatedAt)
	return mapError(err, "save site configuration")
}

const invoiceConfigColumns = `company_name, company_address, company_phone, company_email, company_tin,
	bank_name, bank_account_number, bank_account_name, logo_url, theme, font_family,
	primary_color, secondary_color, background_color, accent_color`

func invoiceConfigValues(c *settings.InvoiceConfiguration) []any {
	return []any{
		c.CompanyName, c.CompanyAddress, c.CompanyPhone, c.CompanyEmail, c.CompanyTIN,
		c.BankName, c.BankAccountNumber, c.BankAccountName, c.LogoURL, c.Theme, c.FontFamily,
		c.PrimaryColor, c.SecondaryColor, c.BackgroundColor, c.AccentColor,
	}
}

// GetInvoice returns the singleton row, inserting defaults the first time.
func (r *SettingsRepository) GetInvoice(ctx context.Context) (*settings.InvoiceConfiguration, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoice_configuration (id, `+invoiceConfigColumns+`)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`, invoiceConfigValues(settings.DefaultInvoice())...)
	if err != nil {
		return nil, mapError(err, "initialise invoice configuration")
	}

	var c settings.InvoiceConfiguration
	err = r.db.QueryRow(ctx, `SELECT id, `+invoiceConfigColumns+`, updated_at FROM invoice_configuration WHERE id = 1`).Scan(
		&c.ID, &c.CompanyName, &c.CompanyAddress, &c.CompanyPhone, &c.CompanyEmail, &c.CompanyTIN,
		&c.BankName, &c.BankAccountNumber, &c.BankAccountName, &c.LogoURL, &c.Theme, &c.FontFamily,
		&c.PrimaryColor, &c.SecondaryColor, &c.BackgroundColor, &c.AccentColor, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "read invoice configuration")
	}
	return &c, nil
}

func (r *SettingsRepository) SaveInvoice(ctx context.Context, c *settings.InvoiceConfiguration) error {
	c.ID = 1
	c.UpdatedAt = time.Now()
	args := append(invoiceConfigValues(c), c.UpdatedAt)
	_, err := r.db.Exec(ctx, `
		INSERT INTO invoice_configuration (id, `+invoiceConfigColumns+`, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			company_address = EXCLUDED.company_address,
			company_phone = EXCLUDED.company_phone,
			company_email = EXCLUDED.company_email,
			company_tin = EXCLUDED.company_tin,
			bank_name = EXCLUDED.bank_name,
			bank_account_number = EXCLUDED.bank_account_number,
			bank_account_name = EXCLUDED.bank_account_name,
			logo_url = EXCLUDED.logo_url,
			theme = EXCLUDED.theme,
			font_family = EXCLUDED.font_family,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			background_color = EXCLUDED.background_color,
			accent_color = EXCLUDED.accent_color,
			updated_at = EXCLUDED.updated_at
	`, args...)
	return mapError(err, "save invoice configuration")
}
