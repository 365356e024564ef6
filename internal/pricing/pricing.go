package pricing

import (
	"strings"
)

// Rate holds per-million-token prices for one model family, in the display
// currency (rubles).
type Rate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// rateKeys is checked in order; more specific prefixes must come before the
// families they extend ("gpt-4.1-mini" before "gpt-4.1", "gpt-4o" before
// "gpt-4").
var rateKeys = []string{
	"gpt-4.1-mini",
	"gpt-4.1-nano",
	"gpt-4.1",
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4-turbo",
	"gpt-4",
	"gpt-3.5-turbo",
}

var rates = map[string]Rate{
	"gpt-4.1-mini":  {InputPerMillion: 103.2, OutputPerMillion: 412.8},
	"gpt-4.1-nano":  {InputPerMillion: 25.8, OutputPerMillion: 103.2},
	"gpt-4.1":       {InputPerMillion: 516.0, OutputPerMillion: 2064.0},
	"gpt-4o-mini":   {InputPerMillion: 38.7, OutputPerMillion: 154.8},
	"gpt-4o":        {InputPerMillion: 645.0, OutputPerMillion: 2580.0},
	"gpt-4-turbo":   {InputPerMillion: 2580.0, OutputPerMillion: 7740.0},
	"gpt-4":         {InputPerMillion: 7740.0, OutputPerMillion: 15480.0},
	"gpt-3.5-turbo": {InputPerMillion: 129.0, OutputPerMillion: 387.0},
}

// Resolve maps a model identifier to its rate row by prefix. Unknown models
// return ok=false, never a zero rate: zero would silently bill nothing.
func Resolve(model string) (Rate, bool) {
	for _, key := range rateKeys {
		if strings.HasPrefix(model, key) {
			return rates[key], true
		}
	}
	return Rate{}, false
}

// SplitCost returns the input and output cost shares for a request. A user
// turn is billed only its input share and the paired assistant turn only its
// output share, so callers displaying per-turn cost need the parts.
func SplitCost(model string, inputTokens, outputTokens int) (inputCost, outputCost float64, ok bool) {
	rate, ok := Resolve(model)
	if !ok {
		return 0, 0, false
	}
	inputCost = float64(inputTokens) / 1e6 * rate.InputPerMillion
	outputCost = float64(outputTokens) / 1e6 * rate.OutputPerMillion
	return inputCost, outputCost, true
}

// Cost returns the total cost of a request, or ok=false for unknown models.
func Cost(model string, inputTokens, outputTokens int) (float64, bool) {
	inputCost, outputCost, ok := SplitCost(model, inputTokens, outputTokens)
	if !ok {
		return 0, false
	}
	return inputCost + outputCost, true
}
