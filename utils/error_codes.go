package utils

// Stable numeric error codes returned to the SPA alongside http status.
const (
	ErrorTokenAuthFail = 20001
	ErrorInvalidInput  = 20002
	ErrorNotFound      = 20003
	ErrorForbidden     = 20004
	ErrorConflict      = 20005
	ErrorInternal      = 20006
)
