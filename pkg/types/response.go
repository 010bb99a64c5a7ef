package types

// SuccessEnvelope is the body of every 2xx API response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request: a stable machine code, a
// safe human message, and optional validation details.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the body of every non-2xx API response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
