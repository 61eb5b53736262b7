package errortypes

// Defines numeric codes for well-known errors.
const (
	UnknownErrorCode   = 999
	TransportErrorCode = iota
	ParseErrorCode
	SchemaErrorCode
	URIErrorCode
)

// Coder provides an error code.
type Coder interface {
	Code() int
}

// ReadCode returns the error code, or UnknownErrorCode if unavailable.
func ReadCode(err error) int {
	if e, ok := err.(Coder); ok {
		return e.Code()
	}
	return UnknownErrorCode
}
