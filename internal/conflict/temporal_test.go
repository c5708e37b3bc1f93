// internal/conflict/temporal_test.go
package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{
			name: "disjoint windows",
			a:    Range{Start: date(2026, 1, 1), End: datePtr(2026, 3, 31)},
			b:    Range{Start: date(2026, 4, 1), End: datePtr(2026, 6, 30)},
			want: false,
		},
		{
			name: "partial overlap",
			a:    Range{Start: date(2026, 1, 1), End: datePtr(2026, 6, 30)},
			b:    Range{Start: date(2026, 4, 1), End: datePtr(2026, 12, 31)},
			want: true,
		},
		{
			name: "shared boundary day overlaps",
			a:    Range{Start: date(2026, 1, 1), End: datePtr(2026, 3, 31)},
			b:    Range{Start: date(2026, 3, 31), End: datePtr(2026, 6, 30)},
			want: true,
		},
		{
			name: "contained window",
			a:    Range{Start: date(2026, 1, 1), End: datePtr(2026, 12, 31)},
			b:    Range{Start: date(2026, 3, 1), End: datePtr(2026, 4, 1)},
			want: true,
		},
		{
			name: "open-ended reaches any later start",
			a:    Range{Start: date(2026, 1, 1)},
			b:    Range{Start: date(2030, 1, 1), End: datePtr(2031, 1, 1)},
			want: true,
		},
		{
			name: "open-ended starting after a closed window",
			a:    Range{Start: date(2027, 1, 1)},
			b:    Range{Start: date(2026, 1, 1), End: datePtr(2026, 6, 30)},
			want: false,
		},
		{
			name: "two open-ended windows always overlap",
			a:    Range{Start: date(2026, 1, 1)},
			b:    Range{Start: date(2040, 1, 1)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			// Overlap is symmetric
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}
