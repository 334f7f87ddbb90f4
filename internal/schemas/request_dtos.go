// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is required and must be less than 20 characters
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type RegistrationRequest struct {
	Username string `json:"username" validate:"required,max=20,username_validation"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
}

// LoginRequest is a struct that represents a login request
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserUpdateRequest is a struct that represents an owner-only profile update
// Username is required and must be less than 20 characters
// Image is an optional base64 encoded profile image
type UserUpdateRequest struct {
	Username string `json:"username" validate:"required,max=20,username_validation"`
	Image    string `json:"image" validate:"omitempty,base64"`
}

// PasswordResetRequest is a struct that represents a password reset request
// Email is required and must be a valid email
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SetNewPasswordRequest is a struct that represents a password reset confirmation
// PasswordResetToken is the one-time token mailed to the user
// Password is the new password and must satisfy the password rules
type SetNewPasswordRequest struct {
	PasswordResetToken string `json:"passwordResetToken" validate:"required"`
	Password           string `json:"password" validate:"required,min=8,password_validation"`
}

// CreateHoaxRequest is a struct that represents a create hoax request
// Content is required and must be between 10 and 5000 characters
type CreateHoaxRequest struct {
	Content string `json:"content" validate:"required,min=10,max=5000"`
}
