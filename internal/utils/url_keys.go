package utils

const (
	// UserIdKey is the key for the user ID used in routing parameters.
	UserIdKey = "userId"

	// HoaxIdKey is the key for the hoax ID used in routing parameters.
	HoaxIdKey = "hoaxId"

	// TokenKey is the key for the activation token used in routing parameters.
	TokenKey = "token"

	// PageParamKey is the key for the page used in pagination query parameters.
	PageParamKey = "page"

	// SizeParamKey is the key for the page size used in pagination query parameters.
	SizeParamKey = "size"
)
