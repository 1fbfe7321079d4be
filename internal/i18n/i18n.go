// Package i18n resolves the message keys emitted by the game engines into
// display strings. Spanish is the default; English, Japanese and French are
// selected from an Accept-Language header.
package i18n

import (
	"strconv"

	"golang.org/x/text/language"
)

// Resolver maps a message key to display text.
type Resolver interface {
	Resolve(key string) string
}

// Table is a Resolver over a fixed map. Unknown keys resolve to themselves.
type Table map[string]string

func (t Table) Resolve(key string) string {
	if v, ok := t[key]; ok {
		return v
	}
	return key
}

// CountdownKey returns the message key shown while the countdown displays n.
func CountdownKey(n int) string {
	return "trivia.countdown." + strconv.Itoa(n)
}

var (
	es = Table{
		"trivia.feedback.excellent": "¡Excelente!",
		"trivia.feedback.correct":   "¡Correcto!",
		"trivia.feedback.incorrect": "Incorrecto",
		"trivia.feedback.timeout":   "¡Tiempo agotado!",
		"trivia.countdown.3":        "Prepárate",
		"trivia.countdown.2":        "Concentrate",
		"trivia.countdown.1":        "Listos",
		"trivia.countdown.0":        "¡A jugar!",
	}
	en = Table{
		"trivia.feedback.excellent": "Excellent!",
		"trivia.feedback.correct":   "Correct!",
		"trivia.feedback.incorrect": "Incorrect",
		"trivia.feedback.timeout":   "Time's up!",
		"trivia.countdown.3":        "Get ready",
		"trivia.countdown.2":        "Focus",
		"trivia.countdown.1":        "Set",
		"trivia.countdown.0":        "Go!",
	}
	ja = Table{
		"trivia.feedback.excellent": "すばらしい！",
		"trivia.feedback.correct":   "正解！",
		"trivia.feedback.incorrect": "不正解",
		"trivia.feedback.timeout":   "時間切れ！",
		"trivia.countdown.3":        "準備して",
		"trivia.countdown.2":        "集中",
		"trivia.countdown.1":        "よーい",
		"trivia.countdown.0":        "スタート！",
	}
	fr = Table{
		"trivia.feedback.excellent": "Excellent !",
		"trivia.feedback.correct":   "Correct !",
		"trivia.feedback.incorrect": "Incorrect",
		"trivia.feedback.timeout":   "Temps écoulé !",
		"trivia.countdown.3":        "Préparez-vous",
		"trivia.countdown.2":        "Concentrez-vous",
		"trivia.countdown.1":        "Prêts",
		"trivia.countdown.0":        "C'est parti !",
	}
)

// supported is ordered so the first entry is the fallback.
var (
	supported = []language.Tag{language.Spanish, language.English, language.Japanese, language.French}
	tables    = []Table{es, en, ja, fr}
	matcher   = language.NewMatcher(supported)
)

// Default returns the Spanish table.
func Default() Resolver { return es }

// ForAcceptLanguage picks the best table for an Accept-Language header value.
func ForAcceptLanguage(header string) Resolver {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return es
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return es
	}
	return tables[idx]
}
