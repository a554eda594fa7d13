package domain

import (
	"strings"
	"unicode"
)

// fixedTags are appended to every post after the symbol and trend tags.
var fixedTags = []string{"#Stocks", "#Finance", "#Trading", "#Investing"}

// BuildHashtags returns "#<SYMBOL> #<Trend> #Stocks #Finance #Trading #Investing".
// The trend tag is #Bullish, #Bearish or #FlatMarket for an exactly zero change.
// Characters other than ASCII letters and digits are dropped from the symbol tag.
func BuildHashtags(symbol string, percentChange float64) string {
	tags := make([]string, 0, 2+len(fixedTags))
	if s := symbolTag(symbol); s != "" {
		tags = append(tags, "#"+s)
	}
	tags = append(tags, trendTag(percentChange))
	tags = append(tags, fixedTags...)
	return strings.Join(tags, " ")
}

func symbolTag(symbol string) string {
	var b strings.Builder
	for _, r := range symbol {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trendTag(percentChange float64) string {
	switch {
	case percentChange > 0:
		return "#Bullish"
	case percentChange < 0:
		return "#Bearish"
	default:
		return "#FlatMarket"
	}
}
