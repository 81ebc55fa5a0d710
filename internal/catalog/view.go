package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/kvasir-media/clipstream/internal/api"
	"github.com/kvasir-media/clipstream/internal/model"
	"github.com/kvasir-media/clipstream/internal/notify"
)

// Fetcher lists the public catalog; a non-empty type narrows it
// server-side.
type Fetcher interface {
	ListVideos(ctx context.Context, typeFilter model.VideoType) ([]model.VideoRecord, error)
}

// OwnedFetcher lists the authenticated user's own videos.
type OwnedFetcher interface {
	MyVideos(ctx context.Context) ([]model.VideoRecord, error)
}

// View is the public catalog view-model: a source collection fetched once
// per mount (refetched on a type-filter change, which is pushed to the
// server) and a derived projection recomputed from the current query.
type View struct {
	fetcher  Fetcher
	notifier notify.Notifier

	mu      sync.Mutex
	loading bool
	videos  []model.VideoRecord
	query   Query
}

func NewView(fetcher Fetcher, notifier notify.Notifier) *View {
	return &View{
		fetcher:  fetcher,
		notifier: notifier,
		loading:  true,
		query:    Query{TypeFilter: FilterAll, SortKey: SortNewest},
	}
}

// Load fetches the source collection with the current type filter. On
// failure the collection is emptied, an error notification is published,
// and no retry is attempted.
func (v *View) Load(ctx context.Context) {
	v.mu.Lock()
	v.loading = true
	filter := v.query.TypeFilter.VideoType()
	v.mu.Unlock()

	videos, err := v.fetcher.ListVideos(ctx, filter)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.videos = nil
		v.notifier.Error(fetchMessage(err))
		return
	}
	v.videos = videos
}

func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query.Search = term
}

func (v *View) SetSortKey(k SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query.SortKey = k
}

// SetTypeFilter updates the filter and refetches: the public catalog's
// filter lives server-side.
func (v *View) SetTypeFilter(ctx context.Context, f TypeFilter) {
	v.mu.Lock()
	v.query.TypeFilter = f
	v.mu.Unlock()
	v.Load(ctx)
}

func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Videos recomputes and returns the derived view.
func (v *View) Videos() []model.VideoRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ProjectPublic(v.videos, v.query)
}

// PersonalView is the owner-scoped variant: the collection refetches only
// on a session change, search skips owner names, and aggregate statistics
// are computed over the unfiltered collection.
type PersonalView struct {
	fetcher  OwnedFetcher
	notifier notify.Notifier

	mu       sync.Mutex
	loading  bool
	session  *model.Session
	videos   []model.VideoRecord
	query    Query
	viewMode ViewMode
}

func NewPersonalView(fetcher OwnedFetcher, notifier notify.Notifier) *PersonalView {
	return &PersonalView{
		fetcher:  fetcher,
		notifier: notifier,
		loading:  true,
		query:    Query{TypeFilter: FilterAll, SortKey: SortNewest},
		viewMode: ViewGrid,
	}
}

// SetSession swaps the authentication session and refetches. A nil
// session empties the collection without a fetch.
func (v *PersonalView) SetSession(ctx context.Context, s *model.Session) {
	v.mu.Lock()
	v.session = s
	v.mu.Unlock()

	if s == nil {
		v.mu.Lock()
		v.videos = nil
		v.loading = false
		v.mu.Unlock()
		return
	}

	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	videos, err := v.fetcher.MyVideos(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.videos = nil
		v.notifier.Error(fetchMessage(err))
		return
	}
	v.videos = videos
}

func (v *PersonalView) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query.Search = term
}

func (v *PersonalView) SetSortKey(k SortKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query.SortKey = k
}

// SetTypeFilter narrows the personal projection locally; no refetch.
func (v *PersonalView) SetTypeFilter(f TypeFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query.TypeFilter = f
}

// SetViewMode toggles grid/list display. Display-only.
func (v *PersonalView) SetViewMode(m ViewMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewMode = m
}

func (v *PersonalView) ViewMode() ViewMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewMode
}

func (v *PersonalView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Videos recomputes and returns the derived view.
func (v *PersonalView) Videos() []model.VideoRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Project(v.videos, v.query)
}

// Stats aggregates the unfiltered source collection.
func (v *PersonalView) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ComputeStats(v.videos)
}

func fetchMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Failed to load videos"
}
