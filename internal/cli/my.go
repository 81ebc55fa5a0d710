package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kvasir-media/clipstream/internal/catalog"
	"github.com/kvasir-media/clipstream/internal/db"
)

func cmdMy(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("my", flag.ContinueOnError)
	search := fs.String("search", "", "search your videos")
	typeFilter := fs.String("type", "all", "filter by type: all, short, long")
	sortKey := fs.String("sort", "newest", "sort: newest, oldest, popular, liked")
	mode := fs.String("view", "grid", "display mode: grid, list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(e); err != nil {
		return err
	}

	view := catalog.NewPersonalView(e.client, e.hub)
	view.SetSearch(*search)
	view.SetSortKey(catalog.SortKey(*sortKey))
	view.SetTypeFilter(catalog.TypeFilter(*typeFilter))
	view.SetViewMode(catalog.ViewMode(*mode))
	view.SetSession(ctx, e.sessions.Current())

	stats := view.Stats()
	fmt.Printf("Videos: %d (%d short, %d long)   Views: %d   Likes: %d\n",
		stats.TotalVideos, stats.ShortCount, stats.LongCount, stats.TotalViews, stats.TotalLikes)
	if stats.TotalVideos > 0 {
		fmt.Printf("Average: %.1f views/video, %s/video\n",
			stats.AvgViews, (time.Duration(stats.AvgDuration * float64(time.Second))).Round(time.Second))
	}
	fmt.Println()

	videos := view.Videos()
	if len(videos) == 0 {
		fmt.Println("No videos match.")
		return nil
	}
	printVideoTable(videos)
	return nil
}

func cmdHistory(e *env, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("n", 20, "number of entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := db.ListUploads(e.database, *limit)
	if err != nil {
		return fmt.Errorf("load upload history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No uploads recorded yet.")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %-30s %-6s %8s  %s\n",
			rec.UploadedAt.Format("2006-01-02 15:04"),
			truncate(rec.Title, 30),
			rec.VideoType,
			humanize.IBytes(uint64(rec.SizeBytes)),
			rec.VideoID)
	}
	return nil
}
