package pricing

import "sort"

// WarrantyOption maps an additional warranty duration in months to its flat
// surcharge.
type WarrantyOption struct {
	Months    int   `json:"months"`
	Surcharge Money `json:"surcharge"`
}

// Schedule is a product's warranty pricing table, ordered by ascending month
// count. It replaces the upstream object keyed by stringified month counts;
// the catalog fetch boundary builds it once per product record.
type Schedule []WarrantyOption

// Surcharge returns the flat surcharge for the given additional warranty
// duration. Unknown durations and non-positive months yield zero, never an
// error: a stale selection degrades to no surcharge.
func (s Schedule) Surcharge(months int) Money {
	if months <= 0 {
		return 0
	}
	for _, opt := range s {
		if opt.Months == months {
			return opt.Surcharge
		}
	}
	return 0
}

// Has reports whether the schedule carries an option for the given duration.
func (s Schedule) Has(months int) bool {
	for _, opt := range s {
		if opt.Months == months {
			return true
		}
	}
	return false
}

// NewSchedule builds an ordered schedule from month/surcharge pairs.
func NewSchedule(options map[int]Money) Schedule {
	if len(options) == 0 {
		return nil
	}
	s := make(Schedule, 0, len(options))
	for months, surcharge := range options {
		s = append(s, WarrantyOption{Months: months, Surcharge: surcharge})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Months < s[j].Months })
	return s
}
