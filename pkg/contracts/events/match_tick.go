package events

import "time"

// Evento publicado no tópico "match_ticks" pelo feed de partidas.
// Carrega o snapshot completo do jogo a cada atualização (minuto, placar, status).
type MatchTick struct {
	MatchID   string    `json:"match_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Minute    int       `json:"minute"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Status    string    `json:"status"` // "SCHEDULED" | "LIVE" | "FINISHED"
	IsDerby   bool      `json:"is_derby"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`  // "match-simulator" ou o provider real
	Version   int       `json:"version"` // incrementado a cada tick
}
