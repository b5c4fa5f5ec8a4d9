/*
seed.go - Built-in demo configuration

A small but complete rule book used by dev mode and API tests: a default
09:00-18:00 shift with a non-splitting lunch, a split-shift variant whose
afternoon block keys off the break's valid-in window, and a tiered late
rule book. Mirrors the layouts attendance admins actually configure.
*/
package factory

func intPtr(n int) *int { return &n }

// Seed returns the built-in demo configuration.
func Seed() *ConfigJSON {
	return &ConfigJSON{
		WorkTimes: []WorkTimeJSON{
			{
				ID: "wt-day", Name: "Day Shift",
				Start: "09:00:00", End: "18:00:00",
				IsDefault: true, ValidInEnd: "09:05:00",
			},
			{
				ID: "wt-split", Name: "Split Shift",
				Start: "09:00:00", End: "18:00:00",
			},
			{
				ID: "wt-night", Name: "Night Shift",
				Start: "22:00:00", End: "06:00:00",
				ValidInEnd: "22:05:00",
			},
		},
		Breaks: []BreakJSON{
			{
				ID: "br-lunch", Name: "Lunch",
				Start: "12:00:00", End: "13:00:00",
			},
			{
				ID: "br-split-lunch", Name: "Split Lunch",
				Start: "12:00:00", End: "13:00:00",
				IsShiftSplit: true, ValidBreakInEnd: "13:10:00",
			},
			{
				ID: "br-night-meal", Name: "Night Meal",
				Start: "02:00:00", End: "02:30:00",
			},
		},
		BreakMappings: []MappingJSON{
			{WorkTimeID: "wt-day", BreakID: "br-lunch"},
			{WorkTimeID: "wt-split", BreakID: "br-split-lunch"},
			{WorkTimeID: "wt-night", BreakID: "br-night-meal"},
		},
		Tiers: []TierJSON{
			{ID: "tier-day", WorkTimeID: "wt-day", BlockIndex: 0, Name: "Day default"},
			{ID: "tier-split-1", WorkTimeID: "wt-split", BlockIndex: 1, Name: "Split morning"},
			{ID: "tier-split-2", WorkTimeID: "wt-split", BlockIndex: 2, Name: "Split afternoon"},
		},
		Rules: []RuleJSON{
			{ID: "rule-day-10", TierID: "tier-day", MinMinutes: 10, MaxMinutes: intPtr(19), DeductionValue: "0.05"},
			{ID: "rule-day-20", TierID: "tier-day", MinMinutes: 20, MaxMinutes: intPtr(59), DeductionValue: "0.10"},
			{ID: "rule-day-60", TierID: "tier-day", MinMinutes: 60, DeductionValue: "0.25"},
			{ID: "rule-split1-10", TierID: "tier-split-1", MinMinutes: 10, MaxMinutes: intPtr(29), DeductionValue: "0.05"},
			{ID: "rule-split1-30", TierID: "tier-split-1", MinMinutes: 30, DeductionValue: "0.125"},
			{ID: "rule-split2-10", TierID: "tier-split-2", MinMinutes: 10, MaxMinutes: intPtr(29), DeductionValue: "0.05"},
			{ID: "rule-split2-30", TierID: "tier-split-2", MinMinutes: 30, DeductionValue: "0.125"},
		},
		Schedules: []ScheduleJSON{
			{
				ID: "sched-1", EmployeeID: "emp-1", WorkTimeID: "wt-day",
				EffectiveDate: "2025-01-01", Recurrence: "weekly",
				DaysOfWeek: "Mon,Tue,Wed,Thu,Fri", Priority: 1,
			},
			{
				ID: "sched-2", EmployeeID: "emp-2", WorkTimeID: "wt-split",
				EffectiveDate: "2025-01-01", Recurrence: "daily", Interval: 1,
				Priority: 1,
			},
		},
		Punches: []PunchJSON{
			{
				EmployeeID: "emp-1", Date: "2025-03-10",
				InAM: "09:00:00", OutAM: "12:00:00", InPM: "13:00:00", OutPM: "18:00:00",
			},
			{
				EmployeeID: "emp-1", Date: "2025-03-11",
				InAM: "09:20:00", OutAM: "12:00:00", InPM: "13:00:00", OutPM: "18:00:00",
			},
			{
				EmployeeID: "emp-2", Date: "2025-03-10",
				InAM: "09:00:00", OutAM: "12:00:00", InPM: "13:20:00", OutPM: "18:00:00",
			},
		},
	}
}
