package models

// StrategyDefinition is the immutable configuration for one calendar-spread
// strategy. Loaded once at startup from strategies.toml and never mutated.
type StrategyDefinition struct {
	ID            string  `mapstructure:"id"`
	Name          string  `mapstructure:"name"`
	DayOfWeek     string  `mapstructure:"day_of_week"` // "Monday" .. "Sunday"
	EntryTime     string  `mapstructure:"entry_time"`  // "HH:MM", exact-match trigger
	ExitTime      string  `mapstructure:"exit_time"`   // "HH:MM"
	TargetDelta   float64 `mapstructure:"target_delta"` // 0-100 scale
	NearDays      int     `mapstructure:"near_days"`    // expiry offset of the sold leg
	FarDays       int     `mapstructure:"far_days"`     // expiry offset of the bought leg
	TakeProfitPct float64 `mapstructure:"take_profit_pct"`
	MaxCost       float64 `mapstructure:"max_cost"`

	// Volatility filters and the averaging-down schedule are carried as
	// configuration for operator visibility; the scheduler does not
	// evaluate them.
	VixRange          []float64 `mapstructure:"vix_range"`
	VixOvernightRange []float64 `mapstructure:"vix_overnight_range"`
	VixIntradayRange  []float64 `mapstructure:"vix_intraday_range"`
	AveragingDropPct  float64   `mapstructure:"averaging_drop_pct"`
	AveragingTimes    []string  `mapstructure:"averaging_times"`
	AveragingAmount   float64   `mapstructure:"averaging_amount"`
}
