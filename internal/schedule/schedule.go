// Package schedule computes deterministic publish slots.
//
// A slot is a pure function of how many items have been published so far and
// static configuration: videosPerDay items share a day, days advance from the
// start date, and the time of day is fixed. No clock reads: re-running the
// pipeline always reproduces the same slot for the same ledger cardinality.
package schedule

import (
	"fmt"
	"time"

	"kamishibai/internal/config"
)

// Planner computes publish timestamps from the published-so-far count.
type Planner struct {
	start        time.Time
	videosPerDay int
}

// NewPlanner parses the schedule configuration into a Planner.
func NewPlanner(cfg config.Schedule) (Planner, error) {
	day, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return Planner{}, fmt.Errorf("parse start date: %w", err)
	}
	tod, err := time.Parse("15:04:05", cfg.PublishTime)
	if err != nil {
		return Planner{}, fmt.Errorf("parse publish time: %w", err)
	}
	offset, err := time.Parse("-07:00", cfg.UTCOffset)
	if err != nil {
		return Planner{}, fmt.Errorf("parse utc offset: %w", err)
	}
	perDay := cfg.VideosPerDay
	if perDay < 1 {
		return Planner{}, fmt.Errorf("videos per day must be at least 1, got %d", perDay)
	}

	zone := time.FixedZone("publish", offsetSeconds(offset))
	start := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, zone)
	return Planner{start: start, videosPerDay: perDay}, nil
}

// SlotFor returns the publish timestamp for the item whose zero-based index
// in publication order is n (i.e. n items are already published). Monotonic
// and non-decreasing in n.
func (p Planner) SlotFor(n int) time.Time {
	if n < 0 {
		n = 0
	}
	return p.start.AddDate(0, 0, n/p.videosPerDay)
}

// PublishAt formats a slot the way the platform expects scheduled publish
// times: RFC 3339 with the explicit configured UTC offset.
func (p Planner) PublishAt(n int) string {
	return p.SlotFor(n).Format(time.RFC3339)
}

func offsetSeconds(t time.Time) int {
	_, seconds := t.Zone()
	return seconds
}
