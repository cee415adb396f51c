package topics

const (
	// Feed de estado de partidas
	MatchTicks = "match_ticks"

	// Settlements
	BetCashedOut = "bet_cashed_out"

	// DLQ
	MatchTicksDLQ = "match_ticks_dlq"
)
