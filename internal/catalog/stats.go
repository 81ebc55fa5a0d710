package catalog

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kvasir-media/clipstream/internal/model"
)

// Stats are owner-scoped aggregates over the unfiltered personal
// collection, never over the derived view.
type Stats struct {
	TotalVideos int
	TotalViews  int
	TotalLikes  int
	ShortCount  int
	LongCount   int

	// dashboard summary extras
	AvgViews    float64
	AvgDuration float64
}

// ComputeStats aggregates the personal collection. TotalViews excludes
// each record's own-owner view; TotalLikes prefers the server counter and
// falls back to the raw liker-set size.
func ComputeStats(videos []model.VideoRecord) Stats {
	s := Stats{TotalVideos: len(videos)}
	if len(videos) == 0 {
		return s
	}

	views := make([]float64, 0, len(videos))
	durations := make([]float64, 0, len(videos))
	for _, v := range videos {
		others := v.ViewsByOthers()
		s.TotalViews += others
		s.TotalLikes += v.Likes()
		views = append(views, float64(others))
		durations = append(durations, v.Duration)

		switch v.VideoType {
		case model.TypeShort:
			s.ShortCount++
		case model.TypeLong:
			s.LongCount++
		}
	}

	s.AvgViews = stat.Mean(views, nil)
	s.AvgDuration = stat.Mean(durations, nil)
	return s
}
