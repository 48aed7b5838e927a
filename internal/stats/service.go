// Package stats computes the weekly and all-time viewing statistics
// served by the stats endpoints. All time windows are half-open
// intervals [start, end) anchored on Sunday 00:00 local time.
package stats

import (
	"fmt"
	"time"

	statsdb "github.com/filmrec/filmrec/internal/database/stats"
	"github.com/filmrec/filmrec/internal/entities"
)

// DecadeOrder is the fixed bucket order of the by-decade payload.
var DecadeOrder = []string{"Pre-1960s", "60s", "70s", "80s", "90s", "00s", "10s", "20s"}

// DayNames indexes per-day counts starting at the Sunday anchor.
var DayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

const topListLimit = 5

// DecadeCount is one by-decade bucket.
type DecadeCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FilmRef names one recently watched film.
type FilmRef struct {
	Name string `json:"name"`
}

// WeeklyPayload is the response body of the weekly stats endpoint.
type WeeklyPayload struct {
	TotalWatches  int                 `json:"totalWatches"`
	PercentChange *float64            `json:"percentChange"`
	Days          []string            `json:"days"`
	ThisWeek      []int               `json:"thisWeek"`
	LastWeek      []int               `json:"lastWeek"`
	Directors     []statsdb.NameCount `json:"directors"`
	Actors        []statsdb.NameCount `json:"actors"`
	Genres        []statsdb.NameCount `json:"genres"`
	RecentFilms   []FilmRef           `json:"recentFilms"`
	ByDecade      []DecadeCount       `json:"byDecade"`
}

// Service assembles statistics payloads from the read-side repository.
type Service struct {
	repo *statsdb.Repository
	now  func() time.Time
}

// NewService creates a stats service using the wall clock.
func NewService(repo *statsdb.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WeekWindow returns the previous and current week as half-open
// intervals. Weeks start on Sunday 00:00 in now's location.
func WeekWindow(now time.Time) (prevStart, prevEnd, currStart, currEnd time.Time) {
	// Go's Weekday numbers Sunday as 0.
	daysSinceSunday := int(now.Weekday())
	recentSunday := now.AddDate(0, 0, -daysSinceSunday)

	currStart = time.Date(recentSunday.Year(), recentSunday.Month(), recentSunday.Day(), 0, 0, 0, 0, now.Location())
	currEnd = currStart.AddDate(0, 0, 7)
	prevStart = currStart.AddDate(0, 0, -7)
	prevEnd = currStart
	return prevStart, prevEnd, currStart, currEnd
}

// PercentChange returns the relative change between two counts, or nil
// when there is no baseline to compare against.
func PercentChange(old, new int) *float64 {
	if old == 0 {
		return nil
	}
	change := (float64(new-old) / float64(abs(old))) * 100
	return &change
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PerDayCounts buckets watched entries by day offset from the window
// start. Entries outside [start, start+7d) are ignored.
func PerDayCounts(entries []entities.MovieUser, start time.Time) []int {
	counts := make([]int, 7)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for _, entry := range entries {
		if entry.WatchedDate == nil {
			continue
		}
		d := entry.WatchedDate.In(start.Location())
		entryDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, start.Location())
		delta := int(entryDay.Sub(startDay).Hours() / 24)
		if delta >= 0 && delta < 7 {
			counts[delta]++
		}
	}
	return counts
}

// DecadeLabel maps a release year to its display bucket.
func DecadeLabel(year int) string {
	if year < 1960 {
		return "Pre-1960s"
	}
	decade := (year / 10) * 10
	return fmt.Sprintf("%02ds", decade%100)
}

// ByDecade buckets watched entries by the release decade of the film.
// Films without a release date are skipped; every bucket appears in the
// payload even when empty.
func ByDecade(entries []entities.MovieUser) []DecadeCount {
	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.Movie.ReleaseDate == nil {
			continue
		}
		counts[DecadeLabel(entry.Movie.ReleaseDate.Year())]++
	}

	result := make([]DecadeCount, 0, len(DecadeOrder))
	for _, label := range DecadeOrder {
		result = append(result, DecadeCount{Label: label, Count: counts[label]})
	}
	return result
}

// Weekly assembles the weekly statistics payload for one user.
func (s *Service) Weekly(userID uint) (*WeeklyPayload, error) {
	prevStart, prevEnd, currStart, currEnd := WeekWindow(s.now())

	thisWeek, err := s.repo.WatchedBetween(userID, currStart, currEnd)
	if err != nil {
		return nil, err
	}
	lastWeek, err := s.repo.WatchedBetween(userID, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	directors, err := s.repo.TopPeople(userID, entities.CreditRoleDirector, currStart, currEnd, topListLimit)
	if err != nil {
		return nil, err
	}
	actors, err := s.repo.TopPeople(userID, entities.CreditRoleActor, currStart, currEnd, topListLimit)
	if err != nil {
		return nil, err
	}
	genres, err := s.repo.TopGenres(userID, currStart, currEnd, topListLimit)
	if err != nil {
		return nil, err
	}

	// WatchedBetween orders by watched date descending already.
	recent := make([]FilmRef, 0, topListLimit)
	for _, entry := range thisWeek {
		if len(recent) == topListLimit {
			break
		}
		recent = append(recent, FilmRef{Name: entry.Movie.Title})
	}

	return &WeeklyPayload{
		TotalWatches:  len(thisWeek),
		PercentChange: PercentChange(len(lastWeek), len(thisWeek)),
		Days:          DayNames,
		ThisWeek:      PerDayCounts(thisWeek, currStart),
		LastWeek:      PerDayCounts(lastWeek, prevStart),
		Directors:     directors,
		Actors:        actors,
		Genres:        genres,
		RecentFilms:   recent,
		ByDecade:      ByDecade(thisWeek),
	}, nil
}

// AllTime returns the user's lifetime aggregates.
func (s *Service) AllTime(userID uint) (*statsdb.Totals, error) {
	return s.repo.AllTimeTotals(userID)
}
