package models

import "time"

// OptionContract represents a single option contract returned by the gateway.
type OptionContract struct {
	ConID  int64
	Strike float64
	Right  OptionRight
	Last   float64
	Delta  float64
	Expiry string // YYYYMMDD, as the gateway reports maturity dates
}

// OptionChain represents the contracts available for one underlying/expiry pair.
// Chains are fetched fresh per strategy execution and never cached.
type OptionChain struct {
	Symbol    string
	Expiry    time.Time
	Strike    float64 // resolved strike the chain was filtered to
	Contracts []OptionContract
}

// Puts returns the put contracts in chain order.
func (c *OptionChain) Puts() []OptionContract {
	var puts []OptionContract
	for _, oc := range c.Contracts {
		if oc.Right == RightPut {
			puts = append(puts, oc)
		}
	}
	return puts
}
