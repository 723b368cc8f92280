package score

import (
	"math"
	"sort"
	"time"
)

type Summary struct {
	Count         int `json:"count"`
	Average       int `json:"average"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// Summarize computes the average and day streaks over scores. The current
// streak only counts if its most recent day is today or yesterday.
func Summarize(scores []*Score, today string) Summary {
	if len(scores) == 0 {
		return Summary{}
	}

	sum := 0
	days := make([]time.Time, 0, len(scores))
	seen := make(map[string]bool, len(scores))
	for _, s := range scores {
		sum += s.Score
		if seen[s.Date] {
			continue
		}
		d, err := time.Parse(DateLayout, s.Date)
		if err != nil {
			continue
		}
		seen[s.Date] = true
		days = append(days, d)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	longest, run := 0, 0
	for i := range days {
		if i > 0 && days[i-1].Sub(days[i]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	if t, err := time.Parse(DateLayout, today); err == nil && len(days) > 0 {
		gap := t.Sub(days[0])
		if gap == 0 || gap == 24*time.Hour {
			current = 1
			for i := 1; i < len(days) && days[i-1].Sub(days[i]) == 24*time.Hour; i++ {
				current++
			}
		}
	}

	return Summary{
		Count:         len(scores),
		Average:       int(math.Round(float64(sum) / float64(len(scores)))),
		CurrentStreak: current,
		LongestStreak: longest,
	}
}
