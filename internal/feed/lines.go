// Package feed turns a rate payload into formatted lines and drives one
// write task per line through a bounded scheduler.
package feed

import (
	"sort"
	"strconv"

	"github.com/me/ratefeed/internal/fetch"
)

// QuoteLine pairs a currency code with its formatted output line.
type QuoteLine struct {
	Quote string
	Line  string
}

// DataToLines converts a payload into lines of the form "<date>,<rate>",
// keeping only quotes present in both the payload and the given set, sorted
// ascending by code.
//
// A null or zero rate renders as an empty string after the comma. Zero being
// indistinguishable from a missing rate is inherited from the upstream file
// format and is pinned by tests.
func DataToLines(p *fetch.Payload, quotes []string) []QuoteLine {
	var lines []QuoteLine
	for _, q := range quotes {
		rate, ok := p.Rates[q]
		if !ok {
			continue
		}
		lines = append(lines, QuoteLine{
			Quote: q,
			Line:  p.Date + "," + formatRate(rate),
		})
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].Quote < lines[j].Quote })
	return lines
}

func formatRate(rate *float64) string {
	if rate == nil || *rate == 0 {
		return ""
	}
	return strconv.FormatFloat(*rate, 'f', -1, 64)
}
