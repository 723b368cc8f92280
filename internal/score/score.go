package score

import (
	"fmt"
	"strconv"
	"time"

	"scoredAPI/internal/user"
)

// DateLayout is the wire and storage format of a score's calendar day.
const DateLayout = "2006-01-02"

const (
	MinValue = 0
	MaxValue = 100

	MaxNoteLength = 500

	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 365
	DefaultFeedLimit    = 50
	MaxFeedLimit        = 200
)

type Band string

const (
	BandLow  Band = "low"
	BandMid  Band = "mid"
	BandHigh Band = "high"
)

type Score struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	Description *string   `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Band           Band   `json:"band"`
	Color          string `json:"color"`
	DayDescription string `json:"day_description"`
	DateLabel      string `json:"date_label"`
}

// FeedEntry is a friend's score joined with the owner's public profile.
type FeedEntry struct {
	Score
	UserName     string `json:"user_name"`
	UserUsername string `json:"user_username"`
}

func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}

func BandFor(v int) Band {
	switch {
	case v <= 33:
		return BandLow
	case v <= 66:
		return BandMid
	default:
		return BandHigh
	}
}

func (b Band) Color() string {
	switch b {
	case BandLow:
		return "#ef4444"
	case BandMid:
		return "#eab308"
	default:
		return "#22c55e"
	}
}

func (b Band) DayDescription() string {
	switch b {
	case BandLow:
		return "Challenging day"
	case BandMid:
		return "Moderate day"
	default:
		return "Great day"
	}
}

// Annotate fills the display fields derived from the value and the day.
func (s *Score) Annotate(today string) {
	s.Band = BandFor(s.Score)
	s.Color = s.Band.Color()
	s.DayDescription = s.Band.DayDescription()
	s.DateLabel = DateLabel(s.Date, today)
}

// DateLabel renders day relative to today: "Today", "Yesterday",
// "N days ago" within the last week, otherwise a long-form date.
func DateLabel(day, today string) string {
	d, err := time.Parse(DateLayout, day)
	if err != nil {
		return day
	}
	t, err := time.Parse(DateLayout, today)
	if err != nil {
		return d.Format("Jan 2, 2006")
	}

	diff := int(t.Sub(d).Hours() / 24)
	switch {
	case diff == 0:
		return "Today"
	case diff == 1:
		return "Yesterday"
	case diff > 1 && diff < 7:
		return fmt.Sprintf("%d days ago", diff)
	default:
		return d.Format("Jan 2, 2006")
	}
}

// ParseLimit reads a limit query value. Missing, non-numeric or non-positive
// values fall back to def; anything above max is capped.
func ParseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Day formats t as a calendar day in loc.
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

type UpsertRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Score       *int   `json:"score" validate:"required"`
	Description string `json:"description"`
}

type UpsertResponse struct {
	Success bool   `json:"success"`
	Score   *Score `json:"score"`
}

type ListResponse struct {
	Scores []*Score `json:"scores"`
}

type FeedResponse struct {
	Scores []*FeedEntry `json:"scores"`
}

type FriendScoresResponse struct {
	Friend *user.Summary `json:"friend"`
	Scores []*Score      `json:"scores"`
	Stats  Summary       `json:"stats"`
}
