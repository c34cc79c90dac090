package status

import "testing"

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		now   int64
		start int64
		end   int64
		want  Status
	}{
		{name: "before start", now: 1000, start: 2000, end: 3000, want: Upcoming},
		{name: "between start and end", now: 2500, start: 2000, end: 3000, want: Ongoing},
		{name: "after end", now: 4000, start: 2000, end: 3000, want: Ended},
		{name: "nothing set", now: 1000, start: 0, end: 0, want: Tba},
		{name: "exactly at start", now: 2000, start: 2000, end: 3000, want: Ongoing},
		{name: "exactly at end", now: 3000, start: 2000, end: 3000, want: Ongoing},
		{name: "one past end", now: 3001, start: 2000, end: 3000, want: Ended},
		{name: "end passed with unset start", now: 4000, start: 0, end: 3000, want: Ended},
		{name: "only start set and passed", now: 4000, start: 2000, end: 0, want: Ongoing},
		{name: "only end set in future", now: 1000, start: 0, end: 3000, want: Tba},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Calculate(tt.now, tt.start, tt.end); got != tt.want {
				t.Errorf("Calculate(%d, %d, %d) = %v, want %v", tt.now, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{Tba, "TBA"},
		{Upcoming, "Upcoming"},
		{Ongoing, "Ongoing"},
		{Ended, "Ended"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
