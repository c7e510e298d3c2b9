package activity

// TokenExchangeInvokeValue is the payload of a "signin/tokenExchange" invoke.
type TokenExchangeInvokeValue struct {
	ID             string `json:"id,omitempty"`
	ConnectionName string `json:"connectionName"`
	Token          string `json:"token"`
}

// SignInStateVerifyQuery is the payload of a "signin/verifyState" invoke.
// State carries the proof code the platform obtained from the sign-in UI.
type SignInStateVerifyQuery struct {
	State string `json:"state,omitempty"`
}

// TokenExchangeInvokeResponse is the structured body returned with a 412 so
// the platform falls back to its standard sign-in UI and retries.
type TokenExchangeInvokeResponse struct {
	ID             string `json:"id,omitempty"`
	ConnectionName string `json:"connectionName"`
	FailureDetail  string `json:"failureDetail,omitempty"`
}
