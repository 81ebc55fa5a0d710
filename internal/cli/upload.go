package cli

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/kvasir-media/clipstream/internal/db"
	"github.com/kvasir-media/clipstream/internal/model"
	"github.com/kvasir-media/clipstream/internal/preview"
	"github.com/kvasir-media/clipstream/internal/upload"
)

func cmdUpload(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	path := fs.String("file", "", "video file to upload")
	kind := fs.String("type", "short", "video type: short (≤45s, max 50MB) or long (max 500MB)")
	title := fs.String("title", "", "video title (required, max 100 characters)")
	description := fs.String("description", "", "video description (max 500 characters)")
	withPreview := fs.Bool("preview", false, "serve a local preview URL before confirming")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(e); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("usage: clipstream upload -file <path> -title <title> [-type short|long]")
	}

	file, err := statFile(*path)
	if err != nil {
		return err
	}

	var previews upload.PreviewFactory
	if *withPreview {
		server, err := preview.NewServer(e.cfg.PreviewAddr)
		if err != nil {
			return err
		}
		defer server.Close()
		previews = func(p, contentType string) (upload.PreviewHandle, error) {
			return server.Create(p, contentType)
		}
	}

	pipeline := upload.New(e.client, previews, e.hub)
	defer pipeline.Close()

	pipeline.OnUploaded = func(rec *model.VideoRecord, f upload.File) error {
		videoID := ""
		if rec != nil {
			videoID = rec.ID
		}
		return db.AppendUpload(e.database, videoID, *title, model.VideoType(*kind), f.Size)
	}

	pipeline.SetVideoType(model.VideoType(*kind))
	pipeline.SetTitle(*title)
	pipeline.SetDescription(*description)

	if err := pipeline.Select(file); err != nil {
		return err
	}

	if url := pipeline.PreviewURL(); url != "" {
		fmt.Printf("Preview available at %s\n", url)
		if ok, err := prompt("Upload this file? [y/N] "); err != nil || ok != "y" {
			pipeline.Remove()
			fmt.Println("Upload cancelled.")
			return err
		}
	}

	rec, err := pipeline.Submit(ctx)
	if err != nil {
		return err
	}
	if rec != nil {
		fmt.Printf("Uploaded as %s\n", rec.ID)
	}
	return nil
}

func statFile(path string) (upload.File, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return upload.File{}, fmt.Errorf("upload source: %w", err)
	}
	if stat.IsDir() {
		return upload.File{}, fmt.Errorf("upload source %s is a directory", path)
	}
	return upload.File{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        stat.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
	}, nil
}
