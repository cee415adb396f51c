package market

import "math"

// Price é uma odd decimal em ponto fixo: valor decimal × 100.
// Ex.: odd 1.85 => Price(185). Todo o dinheiro do engine anda em
// centavos e toda odd em Price; float só aparece como fator intermediário,
// sempre arredondado a cada passo derivado.
type Price int64

// Band delimita [min, max] de preço por mercado. Preços calculados
// são sempre fixados dentro da banda; resultado já decidido colapsa
// no extremo correspondente.
type Band struct {
	Min Price
	Max Price
}

var bands = map[Market]Band{
	MatchResult:  {Min: 105, Max: 1500},
	NextGoal:     {Min: 110, Max: 1200},
	TotalGoals:   {Min: 105, Max: 1000},
	BTTS:         {Min: 105, Max: 900},
	NextCorner:   {Min: 120, Max: 800},
	NextCard:     {Min: 120, Max: 900},
	CorrectScore: {Min: 150, Max: 5000},
}

// BandOf retorna a banda de clamping do mercado.
func BandOf(m Market) Band {
	return bands[m]
}

// Clamp fixa o preço dentro da banda do mercado.
func (b Band) Clamp(p Price) Price {
	if p < b.Min {
		return b.Min
	}
	if p > b.Max {
		return b.Max
	}
	return p
}

// Scale aplica um fator multiplicativo ao preço, arredondando
// para o inteiro mais próximo (um passo derivado = um arredondamento).
func (p Price) Scale(f float64) Price {
	return Price(math.Round(float64(p) * f))
}

// Implied devolve a probabilidade implícita (1/odd decimal).
func (p Price) Implied() float64 {
	if p <= 0 {
		return 0
	}
	return 100.0 / float64(p)
}
