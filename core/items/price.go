package items

import (
	"regexp"
	"strconv"
	"strings"
)

var priceTag = regexp.MustCompile(`~(?:price|b/o)\s+(\d+(?:[.,]\d+)?(?:/\d+)?)\s+([A-Za-z'\-]+)`)

var alternateCurrencies = map[string]string{
	"divine":  "divine",
	"div":     "divine",
	"exalted": "exalted",
	"exa":     "exalted",
	"ex":      "exalted",
}

// ParsePrice extracts a "~price <amount> <currency>" or "~b/o ..." tag from a
// note or stash name. Fractional amounts like "1/2" are accepted.
func ParsePrice(note string) (Price, bool) {
	m := priceTag.FindStringSubmatch(note)
	if m == nil {
		return Price{}, false
	}
	amount, ok := parseAmount(m[1])
	if !ok || amount <= 0 {
		return Price{}, false
	}
	currency := strings.ToLower(m[2])
	switch {
	case currency == "chaos" || currency == "c":
		return Price{Kind: PriceChaos, Currency: "chaos", Amount: amount}, true
	case alternateCurrencies[currency] != "":
		return Price{Kind: PriceAlternate, Currency: alternateCurrencies[currency], Amount: amount}, true
	default:
		return Price{Kind: PriceCustom, Currency: currency, Amount: amount}, true
	}
}

func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
