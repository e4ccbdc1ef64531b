package common

const (
	// MaxSubmitRequestBody limits JSON request bodies for the submission endpoint.
	MaxSubmitRequestBody = 64 << 10
	// MaxAdminRequestBody limits JSON request bodies for admin endpoints.
	MaxAdminRequestBody = 16 << 10
)
