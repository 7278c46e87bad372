package admin

// CreateAdminRequest represents the request for creating a new admin
type CreateAdminRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
