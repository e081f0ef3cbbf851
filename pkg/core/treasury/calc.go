package treasury

// Metric arithmetic. Pure functions, deterministic given their inputs; all
// division-by-zero cases yield 0 rather than an error.

// TreasuryValue is holdings times the crypto spot price.
func TreasuryValue(cryptoHoldings int64, cryptoPriceUSD float64) float64 {
	return float64(cryptoHoldings) * cryptoPriceUSD
}

// MNAVPerShare is treasury value per diluted share.
func MNAVPerShare(treasuryValue float64, dilutedShares int64) float64 {
	if dilutedShares == 0 {
		return 0
	}
	return treasuryValue / float64(dilutedShares)
}

// MarketCap is the stock price times diluted shares.
func MarketCap(stockPriceUSD float64, dilutedShares int64) float64 {
	return stockPriceUSD * float64(dilutedShares)
}

// MNAVMultiple is market cap over treasury value.
func MNAVMultiple(marketCap, treasuryValue float64) float64 {
	if treasuryValue == 0 {
		return 0
	}
	return marketCap / treasuryValue
}

// Metrics bundles the four derived metrics.
type Metrics struct {
	TreasuryValue float64 `json:"treasury_value"`
	MNAVPerShare  float64 `json:"mnav_per_share"`
	MarketCap     float64 `json:"market_cap"`
	MNAVMultiple  float64 `json:"mnav_multiple"`
}

// ComputeMetrics derives all four metrics from holdings, prices, and shares.
func ComputeMetrics(cryptoHoldings int64, cryptoPriceUSD float64, dilutedShares int64, stockPriceUSD float64) Metrics {
	tv := TreasuryValue(cryptoHoldings, cryptoPriceUSD)
	mc := MarketCap(stockPriceUSD, dilutedShares)
	return Metrics{
		TreasuryValue: tv,
		MNAVPerShare:  MNAVPerShare(tv, dilutedShares),
		MarketCap:     mc,
		MNAVMultiple:  MNAVMultiple(mc, tv),
	}
}
