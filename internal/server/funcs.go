package server

import (
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

var funcs = template.FuncMap{
	"when": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"num": func(v float64, ok bool) string {
		if !ok {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", v)
	},
	"final": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return "-"
		}
		return d.Decimal.String()
	},
	"nonzero": func(v float64) bool { return v != 0 },
}
