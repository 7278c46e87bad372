// internal/domain/settings/dto.go
package settings

type UpdateSiteRequest struct {
	InvoiceDaysBeforeExpiry int `json:"invoice_days_before_expiry" binding:"required"`
}

type UpdateInvoiceRequest struct {
	CompanyName       *string `json:"company_name"`
	CompanyAddress    *string `json:"company_address"`
	CompanyPhone      *string `json:"company_phone"`
	CompanyEmail      *string `json:"company_email"`
	CompanyTIN        *string `json:"company_tin"`
	BankName          *string `json:"bank_name"`
	BankAccountNumber *string `json:"bank_account_number"`
	BankAccountName   *string `json:"bank_account_name"`
	LogoURL           *string `json:"logo_url"`
	Theme             *Theme  `json:"theme"`
	FontFamily        *string `json:"font_family"`
	PrimaryColor      *string `json:"primary_color"`
	SecondaryColor    *string `json:"secondary_color"`
	BackgroundColor   *string `json:"background_color"`
	AccentColor       *string `json:"accent_color"`
}
