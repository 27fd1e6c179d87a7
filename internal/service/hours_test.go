package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 14, hour, min, 0, 0, time.UTC)
}

func TestOpen(t *testing.T) {
	cases := []struct {
		name      string
		open      string
		close     string
		now       time.Time
		wantsOpen bool
	}{
		{"daytime window inside", "09:00", "18:00", at(12, 0), true},
		{"daytime window before", "09:00", "18:00", at(8, 59), false},
		{"daytime window at open", "09:00", "18:00", at(9, 0), true},
		{"daytime window at close", "09:00", "18:00", at(18, 0), true},
		{"daytime window just after close", "09:00", "18:00", at(18, 1), false},
		{"daytime window after", "09:00", "18:00", at(20, 0), false},
		{"overnight window late evening", "18:00", "02:00", at(23, 0), true},
		{"overnight window after midnight", "18:00", "02:00", at(1, 30), true},
		{"overnight window at close", "18:00", "02:00", at(2, 0), true},
		{"overnight window just after close", "18:00", "02:00", at(2, 1), false},
		{"overnight window midday", "18:00", "02:00", at(10, 0), false},
		{"malformed open parses as midnight", "nine", "18:00", at(12, 0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantsOpen, Open(tc.open, tc.close, tc.now))
		})
	}
}
