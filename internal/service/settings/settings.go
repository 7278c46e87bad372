// internal/service/settings/settings.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"killbill-service/internal/domain/settings"
	xerrors "killbill-service/internal/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type SettingsService struct {
	repo     settings.Repository
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSettingsService(repo settings.Repository, logger *zap.Logger) *SettingsService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &SettingsService{repo: repo, validate: validate, logger: logger}
}

// Load reads both singleton rows, creating them with defaults on first use.
// Processes call it once and pass the result to whatever needs it.
func (s *SettingsService) Load(ctx context.Context) (*settings.Settings, error) {
	site, err := s.repo.GetSite(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site configuration: %w", err)
	}

	inv, err := s.repo.GetInvoice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice configuration: %w", err)
	}

	return &settings.Settings{Site: site, Invoice: inv}, nil
}

// UpdateSite changes how many days before expiry renewal invoices go out.
func (s *SettingsService) UpdateSite(ctx context.Context, req *settings.UpdateSiteRequest) (*settings.SiteConfiguration, error) {
	site, err := s.repo.GetSite(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load site configuration: %w", err)
	}

	site.InvoiceDaysBeforeExpiry = req.InvoiceDaysBeforeExpiry
	if err := s.check(site); err != nil {
		return nil, err
	}

	if err := s.repo.SaveSite(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to save site configuration: %w", err)
	}

	s.logger.Info("site configuration updated", zap.Int("invoice_days_before_expiry", site.InvoiceDaysBeforeExpiry))
	return site, nil
}

// UpdateInvoice applies the non-nil branding fields of req.
func (s *SettingsService) UpdateInvoice(ctx context.Context, req *settings.UpdateInvoiceRequest) (*settings.InvoiceConfiguration, error) {
	cfg, err := s.repo.GetInvoice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice configuration: %w", err)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&cfg.CompanyName, req.CompanyName)
	set(&cfg.CompanyAddress, req.CompanyAddress)
	set(&cfg.CompanyPhone, req.CompanyPhone)
	set(&cfg.CompanyEmail, req.CompanyEmail)
	set(&cfg.CompanyTIN, req.CompanyTIN)
	set(&cfg.BankName, req.BankName)
	set(&cfg.BankAccountNumber, req.BankAccountNumber)
	set(&cfg.BankAccountName, req.BankAccountName)
	set(&cfg.LogoURL, req.LogoURL)
	set(&cfg.FontFamily, req.FontFamily)
	set(&cfg.PrimaryColor, req.PrimaryColor)
	set(&cfg.SecondaryColor, req.SecondaryColor)
	set(&cfg.BackgroundColor, req.BackgroundColor)
	set(&cfg.AccentColor, req.AccentColor)
	if req.Theme != nil {
		cfg.Theme = *req.Theme
	}

	if err := s.check(cfg); err != nil {
		return nil, err
	}

	if err := s.repo.SaveInvoice(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save invoice configuration: %w", err)
	}

	s.logger.Info("invoice configuration updated")
	return cfg, nil
}

// check runs the struct validation and converts failures to field errors.
func (s *SettingsService) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate settings: %w", err)
	}

	out := xerrors.NewValidationError()
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color such as #1f2937"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}
