// Package pricing holds the static Anthropic rate table and fixed-point
// cost arithmetic.
//
// DESIGN: Costs are carried as int64 micro-dollars (six decimal places)
// so per-bucket arithmetic is exact and sums never drift. Rates are
// stored as micro-dollars per million tokens; cost per bucket is then
// tokens * rate / 1_000_000 in integer math.
package pricing

import "strings"

// MicroUSD is a monetary amount in millionths of a dollar.
type MicroUSD int64

// Float returns the amount in dollars.
func (m MicroUSD) Float() float64 {
	return float64(m) / 1_000_000
}

// String formats the amount with exactly six decimals, e.g. "3.000000".
func (m MicroUSD) String() string {
	neg := ""
	v := int64(m)
	if v < 0 {
		neg = "-"
		v = -v
	}
	return neg + itoa(v/1_000_000) + "." + pad6(v%1_000_000)
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func pad6(v int64) string {
	s := itoa(v)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

// Entry holds per-million-token rates for one model, in micro-dollars.
type Entry struct {
	Model                string
	InputPerMillion      MicroUSD
	OutputPerMillion     MicroUSD
	CacheWritePerMillion MicroUSD
	CacheReadPerMillion  MicroUSD
}

// fallbackModel prices unknown models; current-generation sonnet rates
// are the safest middle ground.
const fallbackModel = "claude-3-5-sonnet-20241022"

// anthropicTable maps lower-cased model names to rates.
// Frozen at init; mutating it after startup is a bug.
var anthropicTable = map[string]Entry{
	"claude-3-5-sonnet-20241022": {Model: "claude-3-5-sonnet-20241022", InputPerMillion: 3_000_000, OutputPerMillion: 15_000_000, CacheWritePerMillion: 3_750_000, CacheReadPerMillion: 300_000},
	"claude-3-5-sonnet-20240620": {Model: "claude-3-5-sonnet-20240620", InputPerMillion: 3_000_000, OutputPerMillion: 15_000_000, CacheWritePerMillion: 3_750_000, CacheReadPerMillion: 300_000},
	"claude-3-5-haiku-20241022":  {Model: "claude-3-5-haiku-20241022", InputPerMillion: 1_000_000, OutputPerMillion: 5_000_000, CacheWritePerMillion: 1_250_000, CacheReadPerMillion: 100_000},
	"claude-3-opus-20240229":     {Model: "claude-3-opus-20240229", InputPerMillion: 15_000_000, OutputPerMillion: 75_000_000, CacheWritePerMillion: 18_750_000, CacheReadPerMillion: 1_500_000},
	"claude-3-sonnet-20240229":   {Model: "claude-3-sonnet-20240229", InputPerMillion: 3_000_000, OutputPerMillion: 15_000_000, CacheWritePerMillion: 3_750_000, CacheReadPerMillion: 300_000},
	"claude-3-haiku-20240307":    {Model: "claude-3-haiku-20240307", InputPerMillion: 250_000, OutputPerMillion: 1_250_000, CacheWritePerMillion: 312_500, CacheReadPerMillion: 25_000},
}

// Lookup returns the rate entry for a model, case-insensitively.
// Unknown models fall back to claude-3-5-sonnet-20241022.
func Lookup(model string) Entry {
	if e, ok := anthropicTable[strings.ToLower(model)]; ok {
		return e
	}
	return anthropicTable[fallbackModel]
}

// Models returns the table's model names (unordered).
func Models() []string {
	names := make([]string, 0, len(anthropicTable))
	for name := range anthropicTable {
		names = append(names, name)
	}
	return names
}
