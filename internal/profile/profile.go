package profile

import "time"

// Profile is an optional YAML overlay of calendar defaults and job schedules
// ⭐ SSOT: 환경변수 외 운영 설정은 이 파일 형식으로만
type Profile struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Calendar   Calendar   `yaml:"calendar" json:"calendar"`
	Calculator Calculator `yaml:"calculator" json:"calculator"`
	Schedules  Schedules  `yaml:"schedules" json:"schedules"`
}

// Meta 메타 정보
type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Calendar overrides the month view and filter defaults.
// Zero values keep the environment configuration.
type Calendar struct {
	Timezone           string   `yaml:"timezone" json:"timezone"`
	HighYieldThreshold *float64 `yaml:"high_yield_threshold" json:"high_yield_threshold"`
	SuggestLimit       int      `yaml:"suggest_limit" json:"suggest_limit"`
}

// Calculator holds the quick-select presets in lots (1 lot = 1000 shares)
type Calculator struct {
	PresetLots []int `yaml:"preset_lots" json:"preset_lots"`
}

// Schedules are 6-field cron specs (with seconds)
type Schedules struct {
	CacheWarmup       string `yaml:"cache_warmup" json:"cache_warmup"`
	CacheWarmupMonths int    `yaml:"cache_warmup_months" json:"cache_warmup_months"`
	StockListRefresh  string `yaml:"stock_list_refresh" json:"stock_list_refresh"`
}

// Snapshot records which profile a process started with
type Snapshot struct {
	ProfileID string    `json:"profile_id"`
	Version   string    `json:"version"`
	Hash      string    `json:"hash"`
	YAML      string    `json:"yaml"`
	LoadedAt  time.Time `json:"loaded_at"`
}
