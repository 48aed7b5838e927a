package importers

import (
	"time"

	"github.com/filmrec/filmrec/internal/entities"
)

// relationChanges is an update descriptor for one MovieUser record. A nil
// field means "leave untouched"; a set field is compared against the
// current value so unchanged proposals never trigger a write.
type relationChanges struct {
	WatchStatus *entities.WatchStatus
	WatchedDate *time.Time
	Rating      *float64
	Review      *string
	Liked       *bool
	InWatchlist *bool
	Rewatch     *bool
}

// apply assigns every differing field onto the relation and reports
// whether anything changed. It performs no I/O; the caller decides
// whether to persist.
func (ch relationChanges) apply(rel *entities.MovieUser) bool {
	changed := false

	if ch.WatchStatus != nil && rel.WatchStatus != *ch.WatchStatus {
		rel.WatchStatus = *ch.WatchStatus
		changed = true
	}
	if ch.WatchedDate != nil && !timesEqual(rel.WatchedDate, ch.WatchedDate) {
		t := *ch.WatchedDate
		rel.WatchedDate = &t
		changed = true
	}
	if ch.Rating != nil && !floatsEqual(rel.Rating, ch.Rating) {
		v := *ch.Rating
		rel.Rating = &v
		changed = true
	}
	if ch.Review != nil && rel.Review != *ch.Review {
		rel.Review = *ch.Review
		changed = true
	}
	if ch.Liked != nil && rel.Liked != *ch.Liked {
		rel.Liked = *ch.Liked
		changed = true
	}
	if ch.InWatchlist != nil && rel.InWatchlist != *ch.InWatchlist {
		rel.InWatchlist = *ch.InWatchlist
		changed = true
	}
	if ch.Rewatch != nil && rel.Rewatch != *ch.Rewatch {
		rel.Rewatch = *ch.Rewatch
		changed = true
	}

	return changed
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func floatsEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
