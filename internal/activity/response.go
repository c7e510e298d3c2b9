package activity

// ResponseMeta carries per-request processing metadata.
type ResponseMeta struct {
	Routes   int   `json:"routes"`
	ElapseMs int64 `json:"elapseMs"`
}

// Response is the engine's answer to one processed activity. Exactly one
// Response is produced per inbound activity; the transport returns its
// status and body to the platform verbatim.
type Response struct {
	Status int          `json:"status"`
	Body   any          `json:"body,omitempty"`
	Meta   ResponseMeta `json:"meta"`
}

// NewResponse creates a response with the given status and body.
func NewResponse(status int, body any) *Response {
	return &Response{Status: status, Body: body}
}

// OK creates a 200 response with an optional body.
func OK(body any) *Response {
	return NewResponse(200, body)
}
