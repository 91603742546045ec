package telemetry

import (
	"encoding/json"
	"sort"
)

// LeaderboardEntry records one standout run.
type LeaderboardEntry struct {
	Generation int     `json:"generation"`
	Fitness    float64 `json:"fitness"`
	Gates      int     `json:"gates"`
	Laps       int     `json:"laps"`
}

// Leaderboard keeps the best runs seen across a whole training session,
// sorted best first and capped at a fixed size.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	maxSize int
}

// NewLeaderboard creates a leaderboard holding up to maxSize entries.
func NewLeaderboard(maxSize int) *Leaderboard {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Leaderboard{maxSize: maxSize}
}

// Consider offers a run to the leaderboard. Returns true if it was kept.
func (lb *Leaderboard) Consider(e LeaderboardEntry) bool {
	if len(lb.Entries) >= lb.maxSize && e.Fitness <= lb.Entries[len(lb.Entries)-1].Fitness {
		return false
	}

	lb.Entries = append(lb.Entries, e)
	sort.Slice(lb.Entries, func(i, j int) bool {
		return lb.Entries[i].Fitness > lb.Entries[j].Fitness
	})
	if len(lb.Entries) > lb.maxSize {
		lb.Entries = lb.Entries[:lb.maxSize]
	}
	return true
}

// Best returns the top entry, or a zero entry when empty.
func (lb *Leaderboard) Best() LeaderboardEntry {
	if len(lb.Entries) == 0 {
		return LeaderboardEntry{}
	}
	return lb.Entries[0]
}

// MarshalJSON serializes the leaderboard entries.
func (lb *Leaderboard) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Entries []LeaderboardEntry `json:"entries"`
	}{Entries: lb.Entries}, "", "  ")
}
