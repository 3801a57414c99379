package view

import (
	"strings"

	"github.com/shopspring/decimal"

	"ipo-radar/models"
)

var hundred = decimal.NewFromInt(100)

// ParseMoney reads a model-written amount such as "$131.20", "1,204.5" or
// "$150-160". For ranges the lower bound is used.
func ParseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "-–"); i > 0 {
		s = s[:i]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Upside returns the percentage move from price to the pick's target,
// rounded to one decimal. It is false when either amount does not parse or
// the price is not positive.
func Upside(p models.StockPick) (decimal.Decimal, bool) {
	price, ok := ParseMoney(string(p.Price))
	if !ok || !price.IsPositive() {
		return decimal.Zero, false
	}
	target, ok := ParseMoney(models.Value(p.PriceTarget))
	if !ok {
		return decimal.Zero, false
	}
	return target.Sub(price).Div(price).Mul(hundred).Round(1), true
}

// DisplayPrice prefixes a dollar sign when the model left it off
func DisplayPrice(price models.Text) string {
	s := string(price)
	if s == "" || strings.HasPrefix(s, "$") {
		return s
	}
	return "$" + s
}
