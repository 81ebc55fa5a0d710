// Package catalog derives ordered views over a video collection from a
// mutable query, and aggregate statistics over a personal collection.
// Projection is a pure function of (collection, query): no incremental
// state, recomputed from scratch on any input change.
package catalog

import (
	"sort"
	"strings"

	"github.com/kvasir-media/clipstream/internal/model"
)

// TypeFilter narrows the projection to one video type.
type TypeFilter string

const (
	FilterAll   TypeFilter = "all"
	FilterShort TypeFilter = "short"
	FilterLong  TypeFilter = "long"
)

// VideoType returns the model type a non-all filter selects, or "" for all.
func (f TypeFilter) VideoType() model.VideoType {
	switch f {
	case FilterShort:
		return model.TypeShort
	case FilterLong:
		return model.TypeLong
	}
	return ""
}

// SortKey orders the projected view.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortPopular SortKey = "popular"
	SortLiked   SortKey = "liked"
)

// ViewMode is the personal collection's display toggle. It never affects
// the projected data.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Query is the mutable projection input.
type Query struct {
	Search     string
	TypeFilter TypeFilter
	SortKey    SortKey
}

// Project computes the derived view for a personal collection: search
// matches title or description, case-insensitive substring.
func Project(videos []model.VideoRecord, q Query) []model.VideoRecord {
	return project(videos, q, false)
}

// ProjectPublic computes the derived view for the public catalog, where
// search additionally matches the owner's display name.
func ProjectPublic(videos []model.VideoRecord, q Query) []model.VideoRecord {
	return project(videos, q, true)
}

func project(videos []model.VideoRecord, q Query, matchOwner bool) []model.VideoRecord {
	out := make([]model.VideoRecord, 0, len(videos))

	term := strings.ToLower(q.Search)
	for _, v := range videos {
		if term != "" && !matches(&v, term, matchOwner) {
			continue
		}
		if t := q.TypeFilter.VideoType(); t != "" && v.VideoType != t {
			continue
		}
		out = append(out, v)
	}

	// stable: ties preserve prior relative order
	switch q.SortKey {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortPopular:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Views() > out[j].Views()
		})
	case SortLiked:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Likes() > out[j].Likes()
		})
	case SortNewest:
		fallthrough
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

func matches(v *model.VideoRecord, term string, matchOwner bool) bool {
	if strings.Contains(strings.ToLower(v.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(v.Description), term) {
		return true
	}
	return matchOwner && strings.Contains(strings.ToLower(v.Owner.Name), term)
}
