package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# IBKR Calendar Trader Configuration

[gateway]
# Client Portal gateway base URL
base_url = "https://localhost:5000/v1/api"
# Underlying symbol and listing exchange for chain lookups
symbol = "SPX"
exchange = "CBOE"
# Anchor strike used when the exact strike is absent from the month's list
reference_strike = 5950.0
# Fixed timeout applied to every gateway call
timeout = "5s"
# The localhost gateway serves a self-signed certificate
insecure_skip_verify = true
# Trading mode: "live" or "paper"
mode = "paper"

[scheduler]
# Timezone for day/time trigger matching
timezone = "America/New_York"
# Idle scan interval
tick_interval = "1s"
# Sleep after processing a trigger, so the same minute never re-fires
post_trigger_sleep = "1m"

[control]
# Local operator/metrics HTTP listener
enabled = true
addr = "127.0.0.1:7381"

[journal]
# Append-only execution journal (SQLite)
enabled = true
path = ""

[logging]
level = "info"
console = true
file = true
path = ""
`

const strategiesTemplate = `# Calendar-spread strategy definitions.
# Each strategy fires once on its day at entry_time and closes at exit_time.

[[strategies]]
id = "1"
name = "Monday SPX Calendar"
day_of_week = "Monday"
entry_time = "09:32"
exit_time = "15:30"
target_delta = 70.0
near_days = 4
far_days = 6
take_profit_pct = 20.0
max_cost = 10000.0
vix_range = [10.0, 30.0]
vix_overnight_range = [-5.0, 5.0]
vix_intraday_range = [-3.0, 3.0]
averaging_drop_pct = 10.0
averaging_times = ["10:00", "11:00"]
averaging_amount = 2000.0

[[strategies]]
id = "2"
name = "Wednesday SPX Calendar"
day_of_week = "Wednesday"
entry_time = "10:00"
exit_time = "15:00"
target_delta = 65.0
near_days = 2
far_days = 7
take_profit_pct = 15.0
max_cost = 8000.0
vix_range = [12.0, 28.0]
vix_overnight_range = [-4.0, 4.0]
vix_intraday_range = [-2.0, 2.0]
averaging_drop_pct = 8.0
averaging_times = ["11:00", "12:00"]
averaging_amount = 1500.0

[[strategies]]
id = "3"
name = "Saturday Test"
day_of_week = "Saturday"
entry_time = "13:00"
exit_time = "15:30"
target_delta = 70.0
near_days = 4
far_days = 6
take_profit_pct = 20.0
max_cost = 10000.0
vix_range = [10.0, 30.0]
vix_overnight_range = [-5.0, 5.0]
vix_intraday_range = [-3.0, 3.0]
averaging_drop_pct = 10.0
averaging_times = ["13:30"]
averaging_amount = 2000.0
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

func createTemplateStrategies(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "strategies.toml")
	if err := os.WriteFile(path, []byte(strategiesTemplate), 0644); err != nil {
		return fmt.Errorf("writing strategies template: %w", err)
	}
	return nil
}
