package quota

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQuotaExceeded marks a job rejected before any processing work.
var ErrQuotaExceeded = errors.New("quota exceeded")

// Tier is the caller's billing tier.
type Tier string

const (
	TierFree   Tier = "free"
	TierPro    Tier = "pro"
	TierStudio Tier = "studio"
)

// Limits bound what one caller may process per month. Zero means unlimited.
type Limits struct {
	MaxJobsPerMonth    int
	MaxMinutesPerMonth float64
}

// Usage is the caller's consumption so far this month.
type Usage struct {
	Tier             Tier
	JobsThisMonth    int
	MinutesThisMonth float64
}

var tierLimits = map[Tier]Limits{
	TierFree:   {MaxJobsPerMonth: 5, MaxMinutesPerMonth: 60},
	TierPro:    {MaxJobsPerMonth: 100, MaxMinutesPerMonth: 1200},
	TierStudio: {},
}

// LimitsFor returns the limits for a tier. Unknown tiers get the free plan.
func LimitsFor(t Tier) Limits {
	if l, ok := tierLimits[Tier(strings.ToLower(string(t)))]; ok {
		return l
	}
	return tierLimits[TierFree]
}

// Check gates a new job of durationSeconds against the caller's tier and
// usage. Returns an error wrapping ErrQuotaExceeded when over the limit so
// the pipeline fails fast, before any transcription cost.
func Check(u Usage, durationSeconds float64) error {
	l := LimitsFor(u.Tier)
	if l.MaxJobsPerMonth > 0 && u.JobsThisMonth >= l.MaxJobsPerMonth {
		return fmt.Errorf("%w: %d/%d jobs used this month on the %s tier",
			ErrQuotaExceeded, u.JobsThisMonth, l.MaxJobsPerMonth, u.Tier)
	}
	if l.MaxMinutesPerMonth > 0 {
		projected := u.MinutesThisMonth + durationSeconds/60
		if projected > l.MaxMinutesPerMonth {
			return fmt.Errorf("%w: %.1f/%.0f minutes would be used this month on the %s tier",
				ErrQuotaExceeded, projected, l.MaxMinutesPerMonth, u.Tier)
		}
	}
	return nil
}
