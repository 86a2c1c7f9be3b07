package deadline

import (
	"errors"
	"testing"
	"time"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveExplicit(t *testing.T) {
	got, err := Resolve("2023-05-03_23:59", time.Now)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Error("Resolve() must return a UTC instant")
	}
}

func TestResolveMalformed(t *testing.T) {
	inputs := []string{
		"2023-05-03",
		"2023-05-03 23:59",
		"05/03/2023_23:59",
		"2023-05-03_23:59:00",
		"garbage",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if _, err := Resolve(in, time.Now); !errors.Is(err, ErrMalformedDeadline) {
				t.Errorf("Resolve(%q) error = %v, want ErrMalformedDeadline", in, err)
			}
		})
	}
}

func TestResolveDefault(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "thursday resolves to yesterday",
			now:  time.Date(2023, 5, 4, 10, 0, 0, 0, time.UTC),
			want: time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "wednesday resolves to today",
			now:  time.Date(2023, 5, 3, 0, 0, 1, 0, time.UTC),
			want: time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "tuesday resolves to last week",
			now:  time.Date(2023, 5, 2, 23, 59, 59, 0, time.UTC),
			want: time.Date(2023, 4, 26, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "sunday resolves to previous wednesday",
			now:  time.Date(2023, 5, 7, 12, 30, 0, 0, time.UTC),
			want: time.Date(2023, 5, 3, 23, 59, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve("", fixedNow(tt.now))
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveDefaultProperties(t *testing.T) {
	// Walk a month of instants: the default deadline must always be a
	// Wednesday 23:59:00 UTC inside (now-7d, now] when truncated to days.
	start := time.Date(2023, 5, 1, 7, 13, 21, 0, time.UTC)
	for day := 0; day < 31; day++ {
		now := start.AddDate(0, 0, day)

		got, err := Resolve("", fixedNow(now))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		if got.Weekday() != time.Wednesday {
			t.Errorf("now=%v: weekday = %v, want Wednesday", now, got.Weekday())
		}
		if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 0 {
			t.Errorf("now=%v: time of day = %v, want 23:59:00", now, got)
		}

		// The rule truncates now to midnight, so a Wednesday deadline may
		// land later the same day. Compare at day granularity.
		midnight := now.Truncate(24 * time.Hour)
		deadlineDay := got.Truncate(24 * time.Hour)
		if deadlineDay.After(midnight) {
			t.Errorf("now=%v: deadline day %v is in the future", now, deadlineDay)
		}
		if !deadlineDay.After(midnight.AddDate(0, 0, -7)) {
			t.Errorf("now=%v: deadline day %v older than a week", now, deadlineDay)
		}
	}
}
