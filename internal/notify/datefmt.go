package notify

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

var portugueseMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatLongDate renders t as a long localized date in UTC, e.g.
// "10 de janeiro de 2024" for Portuguese or "January 10, 2024" for English.
// Languages without a dedicated layout fall back to English.
func FormatLongDate(t time.Time, lang language.Tag) string {
	t = t.UTC()
	base, _ := lang.Base()
	switch base.String() {
	case "pt":
		return fmt.Sprintf("%d de %s de %d", t.Day(), portugueseMonths[t.Month()-1], t.Year())
	default:
		return t.Format("January 2, 2006")
	}
}
