package events

// Evento emitido pelo cashout-engine após um settlement bem sucedido.
type BetCashedOut struct {
	BetID         string `json:"bet_id"`
	UserID        string `json:"user_id"`
	ValueCents    int64  `json:"value_cents"`
	StakeCents    int64  `json:"stake_cents"`
	NewBalance    int64  `json:"new_balance_cents"`
	Strategy      string `json:"strategy"` // "aggregate" | "shift"
	SettledUnixMs int64  `json:"settled_unix_ms"`
}
