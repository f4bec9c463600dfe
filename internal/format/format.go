package format

import (
	"fmt"
	"strings"
	"time"
)

// FmtSum formats a whole-so'm amount with the localized currency word.
// Example: FmtSum(125000, "uz") => "125 000 so'm".
func FmtSum(amount int64, lang string) string {
	word := "so'm"
	switch strings.ToLower(lang) {
	case "ru":
		word = "сум"
	case "en":
		word = "sum"
	}
	return thousandSep(amount) + " " + word
}

// thousandSep groups digits with spaces, the uz-UZ convention.
func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	out := ""
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out += " "
		}
		out += string(c)
	}
	if neg {
		return "-" + out
	}
	return out
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "en":
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("02.01.2006")
	}
}
