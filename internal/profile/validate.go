package profile

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// cronParser matches the scheduler (cron.WithSeconds)
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(p *Profile) error {
	// === Meta ===
	if p.Meta.ProfileID == "" {
		return ValidationError{"meta.profile_id", "required"}
	}

	// === Calendar ===
	if p.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(p.Calendar.Timezone); err != nil {
			return ValidationError{"calendar.timezone", err.Error()}
		}
	}
	if t := p.Calendar.HighYieldThreshold; t != nil && (*t < 0 || *t > 100) {
		return ValidationError{"calendar.high_yield_threshold", "must be in [0, 100]"}
	}
	if p.Calendar.SuggestLimit < 0 || p.Calendar.SuggestLimit > 50 {
		return ValidationError{"calendar.suggest_limit", "must be in [0, 50]"}
	}

	// === Calculator ===
	prev := 0
	for i, lots := range p.Calculator.PresetLots {
		if lots <= 0 {
			return ValidationError{fmt.Sprintf("calculator.preset_lots[%d]", i), "must be > 0"}
		}
		if lots <= prev {
			return ValidationError{"calculator.preset_lots", "must be strictly ascending"}
		}
		prev = lots
	}

	// === Schedules ===
	if err := validateCron(p.Schedules.CacheWarmup); err != nil {
		return ValidationError{"schedules.cache_warmup", err.Error()}
	}
	if err := validateCron(p.Schedules.StockListRefresh); err != nil {
		return ValidationError{"schedules.stock_list_refresh", err.Error()}
	}
	if p.Schedules.CacheWarmupMonths < 0 || p.Schedules.CacheWarmupMonths > 12 {
		return ValidationError{"schedules.cache_warmup_months", "must be in [0, 12]"}
	}

	return nil
}

// Warn returns recommendations that do not stop loading
func Warn(p *Profile) []Warning {
	var warnings []Warning

	if p.Meta.Version == "" {
		warnings = append(warnings, Warning{
			Code:    "META_VERSION_EMPTY",
			Message: "meta.version is empty; snapshots cannot be told apart",
		})
	}

	if t := p.Calendar.HighYieldThreshold; t != nil && *t > 15 {
		warnings = append(warnings, Warning{
			Code:    "THRESHOLD_HIGH",
			Message: fmt.Sprintf("high_yield_threshold=%.2f%% will hide almost every event", *t),
		})
	}

	if len(p.Calculator.PresetLots) > 5 {
		warnings = append(warnings, Warning{
			Code:    "PRESETS_MANY",
			Message: fmt.Sprintf("%d presets do not fit on one row", len(p.Calculator.PresetLots)),
		})
	}

	return warnings
}

// validateCron accepts an empty spec (keep default) or a 6-field spec
func validateCron(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := cronParser.Parse(spec); err != nil {
		return err
	}
	return nil
}
