package matchstate

import "time"

// Status do ciclo de vida de uma partida no feed externo.
// Transições válidas: SCHEDULED -> LIVE -> FINISHED.
type Status string

const (
	Scheduled Status = "SCHEDULED"
	Live      Status = "LIVE"
	Finished  Status = "FINISHED"
)

// Snapshot é a visão imutável do estado de uma partida, de propriedade
// do sistema de feed. O engine só lê; nunca escreve.
type Snapshot struct {
	MatchID   string    `json:"matchId"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	Minute    int       `json:"minute"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Status    Status    `json:"status"`
	IsDerby   bool      `json:"isDerby"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int       `json:"version"`
}

// TotalGoals soma o placar dos dois lados.
func (s *Snapshot) TotalGoals() int {
	return s.HomeScore + s.AwayScore
}

// Lead retorna a diferença de gols na perspectiva do mandante.
func (s *Snapshot) Lead() int {
	return s.HomeScore - s.AwayScore
}
