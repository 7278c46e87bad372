// internal/domain/client/dto.go
package client

type CreateClientRequest struct {
	CompanyName   string `json:"company_name" binding:"required,max=255"`
	ContactPerson string `json:"contact_person" binding:"required,max=255"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"required,max=50"`
	Status        Status `json:"status" binding:"omitempty,oneof=active inactive"`
}

type UpdateClientRequest struct {
	CompanyName   *string `json:"company_name" binding:"omitempty,max=255"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=255"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Status        *Status `json:"status" binding:"omitempty,oneof=active inactive"`
}

type ClientListFilters struct {
	Search string `form:"search"`
}
