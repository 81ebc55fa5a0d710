package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/kvasir-media/clipstream/internal/model"
)

type videosResponse struct {
	Videos []model.VideoRecord `json:"videos"`
}

type videoResponse struct {
	Video *model.VideoRecord `json:"video"`
}

// ListVideos fetches the public catalog. A non-empty typeFilter (short or
// long) is pushed to the server as a query parameter.
func (c *Client) ListVideos(ctx context.Context, typeFilter model.VideoType) ([]model.VideoRecord, error) {
	path := "/api/videos"
	if typeFilter != "" {
		path += "?type=" + url.QueryEscape(string(typeFilter))
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out videosResponse
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return out.Videos, nil
}

// MyVideos fetches the authenticated user's own videos.
func (c *Client) MyVideos(ctx context.Context) ([]model.VideoRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/videos/my-videos", nil)
	if err != nil {
		return nil, err
	}
	var out videosResponse
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return out.Videos, nil
}

// GetVideo fetches a single record by id.
func (c *Client) GetVideo(ctx context.Context, id string) (*model.VideoRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/videos/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var out videoResponse
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	if out.Video == nil {
		return nil, &Error{Status: http.StatusNotFound, Message: "video not found"}
	}
	return out.Video, nil
}

// ToggleLike likes or unlikes a video and returns the updated record. A
// failure here is surfaced but must leave the caller's prior state
// unchanged.
func (c *Client) ToggleLike(ctx context.Context, id string) (*model.VideoRecord, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/videos/"+url.PathEscape(id)+"/like", nil)
	if err != nil {
		return nil, err
	}
	var out videoResponse
	if err := c.doJSON(req, &out); err != nil {
		return nil, err
	}
	return out.Video, nil
}

// RecordView registers a view, best-effort: rate-limited locally and
// failures are logged at debug, never returned to the playback path.
func (c *Client) RecordView(ctx context.Context, id string) {
	if !c.viewLimiter.Allow() {
		slog.Debug("view recording suppressed by rate limit", "video", id)
		return
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/videos/"+url.PathEscape(id)+"/view", nil)
	if err != nil {
		slog.Debug("view recording failed", "video", id, "error", err)
		return
	}
	if err := c.doJSON(req, nil); err != nil {
		slog.Debug("view recording failed", "video", id, "error", err)
	}
}
