package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// KmToMeters converts kilometers to whole meters.
func KmToMeters(km float64) int {
	return int(math.Round(km * 1000))
}

// SecondsToClock formats seconds as HH:MM:SS. Whole days are dropped.
func SecondsToClock(total int) string {
	if total < 0 {
		total = 0
	}
	total %= 86400
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ClockToSeconds parses an HH:MM:SS (or HH:MM) string into seconds.
func ClockToSeconds(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM:SS", clock)
	}
	limits := []int{24, 60, 60}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= limits[i] {
			return 0, fmt.Errorf("invalid time %q: want HH:MM:SS", clock)
		}
		switch i {
		case 0:
			total += n * 3600
		case 1:
			total += n * 60
		default:
			total += n
		}
	}
	return total, nil
}
