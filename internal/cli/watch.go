package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

func cmdWatch(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: clipstream watch <video-id>")
	}
	id := fs.Arg(0)

	video, err := e.client.GetVideo(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch video: %w", err)
	}

	// best-effort; never blocks or fails the watch itself
	e.client.RecordView(ctx, id)

	fmt.Printf("%s\n", video.Title)
	fmt.Printf("by %s · %s\n", video.Owner.Name, humanize.Time(video.CreatedAt))
	if video.Description != "" {
		fmt.Printf("\n%s\n", video.Description)
	}
	fmt.Printf("\n%s · %s · %d views · %d likes\n",
		video.VideoType,
		(time.Duration(video.Duration * float64(time.Second))).Round(time.Second),
		video.Views(),
		video.Likes())

	if session := e.sessions.Current(); session != nil && video.LikedBy(session.UserID) {
		fmt.Println("You like this video.")
	}
	return nil
}

func cmdLike(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("like", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: clipstream like <video-id>")
	}
	if err := requireSession(e); err != nil {
		return err
	}
	id := fs.Arg(0)

	video, err := e.client.ToggleLike(ctx, id)
	if err != nil {
		// surfaced but non-destructive: prior state is unchanged
		e.hub.Error(fmt.Sprintf("Could not update like: %v", err))
		return err
	}

	session := e.sessions.Current()
	if video != nil && session != nil && video.LikedBy(session.UserID) {
		e.hub.Success("Added to likes")
	} else {
		e.hub.Success("Removed from likes")
	}
	return nil
}
