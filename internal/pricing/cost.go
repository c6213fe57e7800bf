package pricing

// CostBreakdown is the per-bucket cost of one response, in micro-dollars.
// Total is always the sum of the four components.
type CostBreakdown struct {
	Input         MicroUSD `json:"input_cost"`
	Output        MicroUSD `json:"output_cost"`
	CacheCreation MicroUSD `json:"cache_creation_cost"`
	CacheRead     MicroUSD `json:"cache_read_cost"`
	Total         MicroUSD `json:"total_cost"`
}

// bucketCost computes tokens * ratePerMillion / 1e6 in integer math.
func bucketCost(tokens int64, rate MicroUSD) MicroUSD {
	return MicroUSD(tokens * int64(rate) / 1_000_000)
}

// Cost prices a token usage tuple against a model's rate entry.
func Cost(model string, inputTokens, outputTokens, cacheCreationTokens, cacheReadTokens int64) CostBreakdown {
	e := Lookup(model)
	b := CostBreakdown{
		Input:         bucketCost(inputTokens, e.InputPerMillion),
		Output:        bucketCost(outputTokens, e.OutputPerMillion),
		CacheCreation: bucketCost(cacheCreationTokens, e.CacheWritePerMillion),
		CacheRead:     bucketCost(cacheReadTokens, e.CacheReadPerMillion),
	}
	b.Total = b.Input + b.Output + b.CacheCreation + b.CacheRead
	return b
}
