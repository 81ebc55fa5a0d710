package model

import "time"

// VideoType distinguishes short clips from long-form videos.
type VideoType string

const (
	TypeShort VideoType = "short"
	TypeLong  VideoType = "long"
)

// User is the owner reference embedded in a video record.
type User struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// VideoRecord is a video as returned by the remote catalog API. The
// components in this repo treat it as read-only.
//
// ViewCount and LikeCount are server-computed counters; when present they
// take precedence over the raw ViewerIDs/LikerIDs set sizes.
type VideoRecord struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoType   VideoType `json:"videoType"`
	Owner       User      `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	Duration    float64   `json:"duration"`
	ViewerIDs   []string  `json:"views"`
	LikerIDs    []string  `json:"likes"`
	ViewCount   *int      `json:"viewCount,omitempty"`
	LikeCount   *int      `json:"likeCount,omitempty"`
}

// Views resolves the view count for a record: the server counter when
// present, otherwise the raw viewer-set size.
func (v *VideoRecord) Views() int {
	if v.ViewCount != nil {
		return *v.ViewCount
	}
	return len(v.ViewerIDs)
}

// Likes resolves the like count the same way as Views.
func (v *VideoRecord) Likes() int {
	if v.LikeCount != nil {
		return *v.LikeCount
	}
	return len(v.LikerIDs)
}

// ViewsByOthers counts recorded views excluding the owner's own, if
// present. Viewer sets arrive deduplicated, so the owner id appears at
// most once.
func (v *VideoRecord) ViewsByOthers() int {
	n := 0
	for _, id := range v.ViewerIDs {
		if id != v.Owner.ID {
			n++
		}
	}
	return n
}

// LikedBy reports whether the given user id is in the liker set.
func (v *VideoRecord) LikedBy(userID string) bool {
	for _, id := range v.LikerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Session is an authenticated platform session, persisted in the local
// state store between runs.
type Session struct {
	UserID    string
	Name      string
	Email     string
	Token     string
	CreatedAt time.Time
}
