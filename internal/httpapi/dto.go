package httpapi

// ExecuteCashoutRequest é o corpo do POST /v1/bets/{id}/cashout.
// ConfirmValue opcional: quando presente, o engine rejeita com
// stale_quote se o valor recalculado divergir além da tolerância.
type ExecuteCashoutRequest struct {
	UserID       string `json:"userId"`
	ConfirmValue int64  `json:"confirm_value_cents,omitempty"`
	Strategy     string `json:"strategy,omitempty"` // "aggregate" (default) | "shift"
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}
