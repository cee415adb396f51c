package market

import "fmt"

// Market identifica um mercado de aposta suportado pelo engine.
type Market string

const (
	MatchResult  Market = "MATCH_RESULT"
	NextGoal     Market = "NEXT_GOAL"
	TotalGoals   Market = "TOTAL_GOALS"
	BTTS         Market = "BTTS"
	NextCorner   Market = "NEXT_CORNER"
	NextCard     Market = "NEXT_CARD"
	CorrectScore Market = "CORRECT_SCORE"
)

// Selection identifica uma seleção dentro de um mercado.
// O conjunto válido depende do mercado (ver Selections).
type Selection string

const (
	Home Selection = "HOME"
	Draw Selection = "DRAW"
	Away Selection = "AWAY"

	NoGoal Selection = "NO_GOAL"

	Over25  Selection = "OVER_2_5"
	Under25 Selection = "UNDER_2_5"

	Yes Selection = "YES"
	No  Selection = "NO"

	// CORRECT_SCORE: o placar corrente se mantém até o fim, ou não.
	CurrentScore Selection = "CS_CURRENT"
	OtherScore   Selection = "CS_OTHER"
)

// selections mapeia cada mercado para o seu conjunto de seleções válidas.
// Combinações mercado/seleção fora desse mapa são irrepresentáveis no engine.
var selections = map[Market][]Selection{
	MatchResult:  {Home, Draw, Away},
	NextGoal:     {Home, Away, NoGoal},
	TotalGoals:   {Over25, Under25},
	BTTS:         {Yes, No},
	NextCorner:   {Home, Away},
	NextCard:     {Home, Away},
	CorrectScore: {CurrentScore, OtherScore},
}

// All retorna todos os mercados suportados, em ordem estável.
func All() []Market {
	return []Market{MatchResult, NextGoal, TotalGoals, BTTS, NextCorner, NextCard, CorrectScore}
}

// Selections retorna o conjunto de seleções válidas do mercado.
func Selections(m Market) []Selection {
	return selections[m]
}

// Parse valida um identificador de mercado vindo da borda HTTP.
func Parse(s string) (Market, error) {
	m := Market(s)
	if _, ok := selections[m]; !ok {
		return "", fmt.Errorf("unknown market %q", s)
	}
	return m, nil
}

// ValidSelection informa se a seleção pertence ao mercado.
func ValidSelection(m Market, sel Selection) bool {
	for _, s := range selections[m] {
		if s == sel {
			return true
		}
	}
	return false
}
