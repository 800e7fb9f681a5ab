package chart

import "strings"

// DefaultStroke is the slice outline used for every symbol.
const DefaultStroke = "rgba(255, 255, 255, 0.1)"

// Style is the visual identity of one symbol in the chart and legend.
type Style struct {
	FillColor   string
	StrokeColor string
	Marker      string
}

var fallbackStyle = Style{FillColor: "#6C757D", StrokeColor: DefaultStroke, Marker: "●"}

// symbolStyles is the single source of symbol colors. Keys are upper case.
var symbolStyles = map[string]Style{
	// crypto
	"BTC":   {FillColor: "#F7931A", StrokeColor: DefaultStroke, Marker: "₿"},
	"ETH":   {FillColor: "#627EEA", StrokeColor: DefaultStroke, Marker: "Ξ"},
	"LTC":   {FillColor: "#345D9D", StrokeColor: DefaultStroke, Marker: "Ł"},
	"XRP":   {FillColor: "#23292F", StrokeColor: DefaultStroke, Marker: "✕"},
	"ADA":   {FillColor: "#0033AD", StrokeColor: DefaultStroke, Marker: "₳"},
	"DOT":   {FillColor: "#E6007A", StrokeColor: DefaultStroke, Marker: "◉"},
	"SOL":   {FillColor: "#9945FF", StrokeColor: DefaultStroke, Marker: "◎"},
	"DOGE":  {FillColor: "#C2A633", StrokeColor: DefaultStroke, Marker: "Ð"},
	"BEST":  {FillColor: "#2DCC70", StrokeColor: DefaultStroke, Marker: "◆"},
	"LINK":  {FillColor: "#2A5ADA", StrokeColor: DefaultStroke, Marker: "⬡"},
	"MATIC": {FillColor: "#8247E5", StrokeColor: DefaultStroke, Marker: "▲"},
	"USDT":  {FillColor: "#26A17B", StrokeColor: DefaultStroke, Marker: "₮"},
	"USDC":  {FillColor: "#2775CA", StrokeColor: DefaultStroke, Marker: "◈"},
	// fiat
	"EUR": {FillColor: "#00D4AA", StrokeColor: DefaultStroke, Marker: "€"},
	"USD": {FillColor: "#85BB65", StrokeColor: DefaultStroke, Marker: "$"},
	"GBP": {FillColor: "#C8102E", StrokeColor: DefaultStroke, Marker: "£"},
	"CHF": {FillColor: "#D52B1E", StrokeColor: DefaultStroke, Marker: "₣"},
	"TRY": {FillColor: "#E30A17", StrokeColor: DefaultStroke, Marker: "₺"},
	"PLN": {FillColor: "#DC143C", StrokeColor: DefaultStroke, Marker: "zł"},
}

// StyleFor returns the style for symbol, or the neutral fallback for
// symbols not in the table. Lookup ignores case and surrounding space.
func StyleFor(symbol string) Style {
	if s, ok := symbolStyles[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return s
	}
	return fallbackStyle
}

// FallbackStyle returns the style given to unknown symbols.
func FallbackStyle() Style {
	return fallbackStyle
}
