package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kvasir-media/clipstream/internal/catalog"
	"github.com/kvasir-media/clipstream/internal/model"
)

func cmdList(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	search := fs.String("search", "", "search videos, creators, or topics")
	typeFilter := fs.String("type", "all", "filter by type: all, short, long")
	sortKey := fs.String("sort", "newest", "sort: newest, oldest, popular, liked")
	if err := fs.Parse(args); err != nil {
		return err
	}

	view := catalog.NewView(e.client, e.hub)
	view.SetSearch(*search)
	view.SetSortKey(catalog.SortKey(*sortKey))
	view.SetTypeFilter(ctx, catalog.TypeFilter(*typeFilter))

	videos := view.Videos()
	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return nil
	}
	printVideoTable(videos)
	return nil
}

func printVideoTable(videos []model.VideoRecord) {
	fmt.Printf("%-26s %-30s %-6s %-14s %6s %6s  %s\n",
		"ID", "TITLE", "TYPE", "CREATOR", "VIEWS", "LIKES", "UPLOADED")
	for _, v := range videos {
		fmt.Printf("%-26s %-30s %-6s %-14s %6d %6d  %s\n",
			v.ID,
			truncate(v.Title, 30),
			v.VideoType,
			truncate(v.Owner.Name, 14),
			v.Views(),
			v.Likes(),
			humanize.Time(v.CreatedAt))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max-1]) + "…"
}
