package fault

import (
	"errors"
	"fmt"
)

// Kind classifica as falhas esperadas do engine — resultados que o chamador
// consegue tratar, em oposição a falhas de infraestrutura (KindInternal).
type Kind int

const (
	KindInternal Kind = iota // persistência/infra indisponível; nunca re-tentado aqui
	KindNotFound
	KindUnauthorized
	KindIneligible
	KindStaleQuote
	KindConflict
	KindMissingBaseData
)

// Reason é o código legível devolvido junto com KindIneligible,
// para o cliente renderizar a mensagem certa.
type Reason string

const (
	ReasonAlreadySettled Reason = "already_settled"
	ReasonMatchNotLive   Reason = "match_not_live"
	ReasonOutsideWindow  Reason = "outside_time_window"
	ReasonTooSoon        Reason = "too_soon_after_placement"
	ReasonLegLost        Reason = "leg_already_lost"
	ReasonAllLegsWon     Reason = "all_legs_already_won"
	ReasonBelowFloor     Reason = "value_below_floor"
)

// Fault carrega o kind, o reason (quando aplicável) e a mensagem.
type Fault struct {
	Kind   Kind
	Reason Reason
	msg    string
}

func (f *Fault) Error() string {
	if f.Reason != "" {
		return fmt.Sprintf("%s: %s", f.msg, f.Reason)
	}
	return f.msg
}

func NotFound(what string) error {
	return &Fault{Kind: KindNotFound, msg: what + " not found"}
}

func Unauthorized() error {
	return &Fault{Kind: KindUnauthorized, msg: "bet does not belong to caller"}
}

func Ineligible(r Reason) error {
	return &Fault{Kind: KindIneligible, Reason: r, msg: "cash-out not eligible"}
}

func StaleQuote(confirmed, current int64) error {
	return &Fault{Kind: KindStaleQuote, msg: fmt.Sprintf("quote changed: confirmed=%d current=%d", confirmed, current)}
}

func Conflict() error {
	// CAS de status falhou: outra execução já liquidou. Reportado como
	// "already settled" de forma idempotente.
	return &Fault{Kind: KindConflict, Reason: ReasonAlreadySettled, msg: "bet already settled"}
}

func MissingBaseData(matchID string) error {
	return &Fault{Kind: KindMissingBaseData, msg: "no base odds for match " + matchID}
}

// KindOf extrai o Kind de um erro. Erros fora da taxonomia são KindInternal.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindInternal
}

// ReasonOf extrai o reason code, se houver.
func ReasonOf(err error) Reason {
	var f *Fault
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}
