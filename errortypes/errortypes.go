package errortypes

// TransportError should be used when a remote endpoint could not be reached, or when it answered
// with a non-2xx status.
//
// For example:
//
//   - The connection was refused or timed out.
//   - The server responded with a 500.
type TransportError struct {
	Message    string
	StatusCode int
}

func (err *TransportError) Error() string {
	return err.Message
}

func (err *TransportError) Code() int {
	return TransportErrorCode
}

// ParseError should be used when a response body is not valid JSON, or does not have the
// top-level shape needed to read it at all.
type ParseError struct {
	Message string
}

func (err *ParseError) Error() string {
	return err.Message
}

func (err *ParseError) Code() int {
	return ParseErrorCode
}

// SchemaError should be used when a well-formed JSON document does not match the disclosure
// or cookie record schema.
type SchemaError struct {
	Message string
}

func (err *SchemaError) Error() string {
	return err.Message
}

func (err *SchemaError) Code() int {
	return SchemaErrorCode
}

// URIError should be used when a URL taken from a remote document is not a valid absolute
// request URI. No request is attempted for these.
type URIError struct {
	Message string
}

func (err *URIError) Error() string {
	return err.Message
}

func (err *URIError) Code() int {
	return URIErrorCode
}
