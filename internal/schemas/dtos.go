package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
// Timestamp and Path describe when and where the failure happened
// ValidationErrors maps a field to its first failing rule, only set for ERR-013
type ErrorDTO struct {
	Error            CustomError       `json:"error"`
	Timestamp        string            `json:"timestamp"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// UserDTO is a struct that represents a user response
type UserDTO struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Image    *string `json:"image"`
}

// LoginDTO is a struct that represents a successful login response
// Token is the opaque session token to be presented as a bearer credential
type LoginDTO struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Image    *string `json:"image"`
	Token    string  `json:"token"`
}

// HoaxDTO is a struct that represents a hoax response
type HoaxDTO struct {
	HoaxId       string    `json:"hoaxId"`
	Content      string    `json:"content"`
	CreationDate string    `json:"creationDate"`
	Author       AuthorDTO `json:"author"`
}

// AuthorDTO is a struct that represents the author of a hoax
type AuthorDTO struct {
	UserId   string  `json:"userId"`
	Username string  `json:"username"`
	Image    *string `json:"image"`
}

// MetadataDTO is a struct that represents the version response
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the page of records, Pagination describes the page window
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is a struct that represents the page window of a paginated response
type Pagination struct {
	Page         int   `json:"page"`
	Size         int   `json:"size"`
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int64 `json:"totalPages"`
}
