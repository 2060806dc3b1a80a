package pricing

import "testing"

func TestScheduleSurchargeLookup(t *testing.T) {
	s := NewSchedule(map[int]Money{6: 500, 12: 800})

	if got := s.Surcharge(12); got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
	if got := s.Surcharge(6); got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestScheduleMissingKeyYieldsZero(t *testing.T) {
	s := NewSchedule(map[int]Money{6: 500})
	if got := s.Surcharge(24); got != 0 {
		t.Fatalf("expected 0 for unknown duration, got %d", got)
	}
	if got := s.Surcharge(0); got != 0 {
		t.Fatalf("expected 0 for no selection, got %d", got)
	}
	if got := Schedule(nil).Surcharge(6); got != 0 {
		t.Fatalf("expected 0 for empty schedule, got %d", got)
	}
}

func TestNewScheduleOrdersByMonths(t *testing.T) {
	s := NewSchedule(map[int]Money{24: 1200, 6: 500, 12: 800})
	if len(s) != 3 {
		t.Fatalf("expected 3 options, got %d", len(s))
	}
	for i, want := range []int{6, 12, 24} {
		if s[i].Months != want {
			t.Fatalf("position %d: expected %d months, got %d", i, want, s[i].Months)
		}
	}
}

func TestWarrantyScenario(t *testing.T) {
	// product new_price 1000, warranty {"6":500,"12":800}, qty 2, 12 months
	s := NewSchedule(map[int]Money{6: 500, 12: 800})
	if got := LineTotal(1000, 2, s.Surcharge(12)); got != 2800 {
		t.Fatalf("expected 2800, got %d", got)
	}
}
