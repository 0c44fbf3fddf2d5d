package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var esAR = language.MustParse("es-AR")

// FormatARS renders an amount in pesos with es-AR digit grouping, e.g. "$45.000".
func FormatARS(amount int64) string {
	p := message.NewPrinter(esAR)
	return "$" + p.Sprint(number.Decimal(amount))
}

// FormatRange renders a per-day price range, collapsing it when min equals max.
// Without a positive minimum there is no range to show.
func FormatRange(min, max int64) string {
	switch {
	case min <= 0:
		return ""
	case min == max || max <= 0:
		return FormatARS(min) + " / día"
	default:
		return FormatARS(min) + " - " + FormatARS(max) + " / día"
	}
}
