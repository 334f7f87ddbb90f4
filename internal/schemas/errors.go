package schemas

// CustomError is a struct that represents a stable, user-visible error
// Code is the stable error code, Message is the human readable description
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// InternalServerError is returned for unexpected failures inside the server.
	InternalServerError = &CustomError{
		Code:    "ERR-000",
		Message: "Something went wrong on our side. Please try again later.",
	}
	// BadRequest is returned when the request body cannot be processed.
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	// UsernameTaken is returned when the requested username already exists.
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	// EmailTaken is returned when the requested email already exists.
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The email is already registered. Please try another email.",
	}
	// UserNotFound is returned when the targeted user does not exist.
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found. Please check the given information.",
	}
	// InvalidCredentials is returned when email or password do not match.
	InvalidCredentials = &CustomError{
		Code:    "ERR-005",
		Message: "The credentials are invalid. Please check the email and password.",
	}
	// UserNotActivated is returned when an inactive account tries to log in.
	UserNotActivated = &CustomError{
		Code:    "ERR-006",
		Message: "The account is not activated yet. Please activate the account first.",
	}
	// Unauthorized is returned when a route requires a valid bearer token.
	Unauthorized = &CustomError{
		Code:    "ERR-007",
		Message: "You are not authorized. Please log in and try again.",
	}
	// Forbidden is returned when the caller is not entitled to the resource.
	Forbidden = &CustomError{
		Code:    "ERR-008",
		Message: "You are not allowed to perform this action.",
	}
	// InvalidActivationToken is returned for unknown or already consumed activation tokens.
	InvalidActivationToken = &CustomError{
		Code:    "ERR-009",
		Message: "This account is either already active or the activation token is invalid.",
	}
	// InvalidPasswordResetToken is returned for unknown or already consumed reset tokens.
	InvalidPasswordResetToken = &CustomError{
		Code:    "ERR-010",
		Message: "The password reset token is invalid. Please request a new one.",
	}
	// EmailNotSent is returned when the mail collaborator fails to deliver.
	EmailNotSent = &CustomError{
		Code:    "ERR-011",
		Message: "The email could not be sent. Please try again later.",
	}
	// DatabaseError is returned when the store is unreachable or misbehaving.
	DatabaseError = &CustomError{
		Code:    "ERR-012",
		Message: "A database error occurred. Please try again later.",
	}
	// ValidationFailed is returned together with a field to message mapping.
	ValidationFailed = &CustomError{
		Code:    "ERR-013",
		Message: "One or more fields did not pass validation.",
	}
	// HoaxNotFound is returned when the targeted hoax does not exist.
	HoaxNotFound = &CustomError{
		Code:    "ERR-014",
		Message: "The hoax was not found. Please check the given information.",
	}
	// EmailUnreachable is returned when the registration email cannot receive mail.
	EmailUnreachable = &CustomError{
		Code:    "ERR-015",
		Message: "The email address does not seem to accept mail. Please check the email.",
	}
)
