package stats

import (
	"testing"

	"github.com/habitgrid/habitgrid-backend/models"
)

func TestMonthDates(t *testing.T) {
	t.Run("january has 31 tagged days", func(t *testing.T) {
		dates, err := MonthDates("2025-01")
		if err != nil {
			t.Fatalf("MonthDates failed: %v", err)
		}
		if len(dates) != 31 {
			t.Fatalf("expected 31 days, got %d", len(dates))
		}
		if dates[0].FullDate != "2025-01-01" || dates[0].Day != "Wed" || dates[0].Date != 1 {
			t.Errorf("unexpected first day: %+v", dates[0])
		}
		if dates[30].FullDate != "2025-01-31" || dates[30].Day != "Fri" {
			t.Errorf("unexpected last day: %+v", dates[30])
		}
	})

	t.Run("leap february", func(t *testing.T) {
		dates, err := MonthDates("2024-02")
		if err != nil {
			t.Fatalf("MonthDates failed: %v", err)
		}
		if len(dates) != 29 {
			t.Errorf("expected 29 days, got %d", len(dates))
		}
	})

	t.Run("non-leap february", func(t *testing.T) {
		dates, err := MonthDates("2025-02")
		if err != nil {
			t.Fatalf("MonthDates failed: %v", err)
		}
		if len(dates) != 28 {
			t.Errorf("expected 28 days, got %d", len(dates))
		}
	})

	t.Run("rejects malformed month", func(t *testing.T) {
		for _, bad := range []string{"2025", "2025-13", "jan-2025", ""} {
			if _, err := MonthDates(bad); err == nil {
				t.Errorf("expected error for %q", bad)
			}
		}
	})
}

func TestForHabit(t *testing.T) {
	jan, err := MonthDates("2025-01")
	if err != nil {
		t.Fatalf("MonthDates failed: %v", err)
	}

	t.Run("counts only dates inside the month", func(t *testing.T) {
		s := ForHabit([]string{"2025-01-03", "2025-01-05", "2025-02-01"}, jan)
		if s.Checked != 2 || s.Total != 31 {
			t.Errorf("got checked=%d total=%d, want 2/31", s.Checked, s.Total)
		}
		if s.Percentage != 6 { // round(2/31*100) = round(6.45)
			t.Errorf("got percentage=%d, want 6", s.Percentage)
		}
	})

	t.Run("empty completed set", func(t *testing.T) {
		s := ForHabit(nil, jan)
		if s.Checked != 0 || s.Total != 31 || s.Percentage != 0 {
			t.Errorf("unexpected stats for empty set: %+v", s)
		}
	})

	t.Run("zero-length month yields zero percentage", func(t *testing.T) {
		s := ForHabit([]string{"2025-01-03"}, nil)
		if s.Checked != 0 || s.Total != 0 || s.Percentage != 0 {
			t.Errorf("unexpected stats for empty month: %+v", s)
		}
	})

	t.Run("checked never exceeds total", func(t *testing.T) {
		var all []string
		for _, d := range jan {
			all = append(all, d.FullDate, d.FullDate) // duplicates must not inflate
		}
		s := ForHabit(all, jan)
		if s.Checked > s.Total {
			t.Errorf("checked %d exceeds total %d", s.Checked, s.Total)
		}
		if s.Percentage != 100 {
			t.Errorf("got percentage=%d, want 100", s.Percentage)
		}
	})

	t.Run("rounding", func(t *testing.T) {
		feb, _ := MonthDates("2025-02")
		s := ForHabit([]string{"2025-02-01", "2025-02-02", "2025-02-03"}, feb)
		if s.Percentage != 11 { // round(3/28*100) = round(10.7)
			t.Errorf("got percentage=%d, want 11", s.Percentage)
		}
	})
}

func TestOverall(t *testing.T) {
	jan, err := MonthDates("2025-01")
	if err != nil {
		t.Fatalf("MonthDates failed: %v", err)
	}

	t.Run("both habits complete makes a perfect day", func(t *testing.T) {
		habits := []models.HabitWithDates{
			{ID: 1, Title: "Exercise", CompletedDates: []string{"2025-01-05"}},
			{ID: 2, Title: "Read", CompletedDates: []string{"2025-01-05"}},
		}
		o := Overall(habits, jan)
		if o.PerfectDays != 1 {
			t.Errorf("got perfectDays=%d, want 1", o.PerfectDays)
		}
		if o.ZeroDays != 30 {
			t.Errorf("got zeroDays=%d, want 30", o.ZeroDays)
		}
		if o.HalfDays != 0 {
			t.Errorf("got halfDays=%d, want 0", o.HalfDays)
		}
	})

	t.Run("half day at exactly 50 percent", func(t *testing.T) {
		habits := []models.HabitWithDates{
			{ID: 1, CompletedDates: []string{"2025-01-10"}},
			{ID: 2, CompletedDates: nil},
		}
		o := Overall(habits, jan)
		if o.HalfDays != 1 {
			t.Errorf("got halfDays=%d, want 1", o.HalfDays)
		}
	})

	t.Run("days between zero and fifty percent land in no bucket", func(t *testing.T) {
		habits := []models.HabitWithDates{
			{ID: 1, CompletedDates: []string{"2025-01-10"}},
			{ID: 2}, {ID: 3},
		}
		o := Overall(habits, jan)
		// 2025-01-10 sits at 33%: not perfect, not half, not zero.
		if o.PerfectDays != 0 || o.HalfDays != 0 {
			t.Errorf("unexpected buckets: %+v", o)
		}
		if o.ZeroDays != 30 {
			t.Errorf("got zeroDays=%d, want 30", o.ZeroDays)
		}
	})

	t.Run("no habits classifies nothing", func(t *testing.T) {
		o := Overall(nil, jan)
		if o.PerfectDays != 0 || o.HalfDays != 0 || o.ZeroDays != 0 {
			t.Errorf("expected empty stats, got %+v", o)
		}
	})
}

func TestChartSeries(t *testing.T) {
	jan, _ := MonthDates("2025-01")

	t.Run("bar series truncates long titles", func(t *testing.T) {
		habits := []models.HabitWithDates{
			{ID: 1, Title: "A habit title that is definitely long", CompletedDates: []string{"2025-01-01"}},
		}
		bars := BarSeries(habits, jan)
		if len(bars) != 1 {
			t.Fatalf("expected 1 bar, got %d", len(bars))
		}
		if bars[0].Name != "A habit title that i..." {
			t.Errorf("unexpected truncated name %q", bars[0].Name)
		}
		if bars[0].Completed != 1 || bars[0].Remaining != 30 {
			t.Errorf("unexpected bar values: %+v", bars[0])
		}
	})

	t.Run("pie series splits completed and remaining", func(t *testing.T) {
		pie := PieSeries(models.HabitWithDates{
			Title:          "Read",
			CompletedDates: []string{"2025-01-01", "2025-01-02"},
		}, jan)
		if pie[0].Name != "Completed" || pie[0].Value != 2 {
			t.Errorf("unexpected completed slice: %+v", pie[0])
		}
		if pie[1].Name != "Remaining" || pie[1].Value != 29 {
			t.Errorf("unexpected remaining slice: %+v", pie[1])
		}
	})
}
