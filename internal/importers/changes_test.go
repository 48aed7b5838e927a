package importers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/filmrec/filmrec/internal/entities"
)

func TestRelationChanges_NilFieldsLeaveEverythingUntouched(t *testing.T) {
	rating := 4.5
	relation := &entities.MovieUser{
		WatchStatus: entities.WatchStatusWatched,
		Rating:      &rating,
		Liked:       true,
	}

	assert.False(t, relationChanges{}.apply(relation))
	assert.Equal(t, entities.WatchStatusWatched, relation.WatchStatus)
	assert.True(t, relation.Liked)
}

func TestRelationChanges_EqualValuesReportNoChange(t *testing.T) {
	watched := entities.WatchStatusWatched
	date := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	rating := 4.5
	review := "Stunning."
	liked := true

	relation := &entities.MovieUser{
		WatchStatus: watched,
		WatchedDate: &date,
		Rating:      &rating,
		Review:      review,
		Liked:       liked,
	}

	changes := relationChanges{
		WatchStatus: &watched,
		WatchedDate: &date,
		Rating:      &rating,
		Review:      &review,
		Liked:       &liked,
	}

	assert.False(t, changes.apply(relation))
}

func TestRelationChanges_AnyDifferenceAssignsAllSetFields(t *testing.T) {
	relation := &entities.MovieUser{}

	watched := entities.WatchStatusWatched
	date := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	rating := 4.5

	changes := relationChanges{
		WatchStatus: &watched,
		WatchedDate: &date,
		Rating:      &rating,
	}

	assert.True(t, changes.apply(relation))
	assert.Equal(t, watched, relation.WatchStatus)
	assert.NotNil(t, relation.WatchedDate)
	assert.True(t, date.Equal(*relation.WatchedDate))
	assert.Equal(t, rating, *relation.Rating)
}

func TestRelationChanges_WatchedDateComparisonUsesTimeEquality(t *testing.T) {
	utc := time.Date(2023, time.May, 1, 12, 0, 0, 0, time.UTC)
	shifted := utc.In(time.FixedZone("CEST", 2*60*60))

	relation := &entities.MovieUser{WatchedDate: &utc}
	changes := relationChanges{WatchedDate: &shifted}

	assert.False(t, changes.apply(relation))
}
