// Package upload owns the lifecycle of one candidate file from selection
// through transfer completion or failure, including the transient local
// preview resource.
package upload

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kvasir-media/clipstream/internal/api"
	"github.com/kvasir-media/clipstream/internal/model"
	"github.com/kvasir-media/clipstream/internal/notify"
)

// State is the pipeline lifecycle. Failed and Succeeded both return to
// Empty on reset; Succeeded resets automatically after the success
// notification.
type State string

const (
	StateEmpty        State = "empty"
	StateSelected     State = "selected"
	StateTransferring State = "transferring"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

// ErrTransferInFlight is returned when an operation is rejected because a
// transfer is already running on this pipeline.
var ErrTransferInFlight = errors.New("a transfer is already in progress")

// Uploader is the narrow transfer contract the pipeline drives. The
// terminal result is delivered exactly once, after all progress calls.
type Uploader interface {
	Upload(ctx context.Context, kind model.VideoType, path, title, description string, onProgress func(pct int)) (*model.VideoRecord, error)
}

// PreviewHandle is a revocable local reference to the staged file's bytes.
type PreviewHandle interface {
	URL() string
	Revoke()
}

// PreviewFactory creates a preview handle for a staged file.
type PreviewFactory func(path, contentType string) (PreviewHandle, error)

// metadata carries the authored limits the upload form enforces.
type metadata struct {
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

// Pipeline drives one upload attempt at a time. All methods are safe for
// concurrent use; at most one Submit is ever in flight.
type Pipeline struct {
	uploader Uploader
	previews PreviewFactory
	notifier notify.Notifier
	validate *validator.Validate

	// OnUploaded, when set, is invoked after a successful transfer with the
	// returned record (possibly nil) and the file that was sent. Best-effort:
	// failures are logged, never surfaced.
	OnUploaded func(rec *model.VideoRecord, f File) error

	mu          sync.Mutex
	state       State
	file        *File
	preview     PreviewHandle
	videoType   model.VideoType
	title       string
	description string
	progress    int
}

func New(uploader Uploader, previews PreviewFactory, notifier notify.Notifier) *Pipeline {
	return &Pipeline{
		uploader:  uploader,
		previews:  previews,
		notifier:  notifier,
		validate:  validator.New(),
		state:     StateEmpty,
		videoType: model.TypeShort,
	}
}

// Select validates and stages a file. Both the file chooser and the
// drag-and-drop path converge here. A rejected file leaves any previously
// staged candidate untouched.
func (p *Pipeline) Select(f File) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateTransferring {
		return ErrTransferInFlight
	}

	if err := validateFile(f, p.videoType); err != nil {
		p.notifier.Error(err.Error())
		return err
	}

	// revoke before replacing: at most one live preview at a time
	if p.preview != nil {
		p.preview.Revoke()
		p.preview = nil
	}

	if p.previews != nil {
		handle, err := p.previews(f.Path, f.ContentType)
		if err != nil {
			// playback-only loss; the candidate is still usable
			slog.Warn("preview unavailable", "file", f.Name, "error", err)
		} else {
			p.preview = handle
		}
	}

	p.file = &f
	p.state = StateSelected
	p.progress = 0
	p.notifier.Success("Video file selected successfully!")
	return nil
}

// Remove discards the staged candidate and revokes its preview. A no-op
// when nothing is staged; rejected while a transfer is running.
func (p *Pipeline) Remove() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateTransferring {
		return ErrTransferInFlight
	}
	if p.file == nil && p.preview == nil {
		p.state = StateEmpty
		return nil
	}

	p.revokeLocked()
	p.file = nil
	p.progress = 0
	p.state = StateEmpty
	return nil
}

// SetVideoType changes the declared type. An already-staged file is not
// re-validated against the new type's limit; the server still enforces
// its own limits on submit.
func (p *Pipeline) SetVideoType(t model.VideoType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videoType = t
}

func (p *Pipeline) SetTitle(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = s
}

func (p *Pipeline) SetDescription(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.description = s
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// File returns the staged candidate, or nil.
func (p *Pipeline) File() *File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file
}

// PreviewURL returns the live preview address, or "" when none exists.
func (p *Pipeline) PreviewURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.preview == nil {
		return ""
	}
	return p.preview.URL()
}

// Submit runs the transfer for the staged candidate. Preconditions (a
// staged file, a non-empty trimmed title, authored length limits) fail
// with ValidationError without touching pipeline state. Only one Submit
// may be in flight; concurrent calls get ErrTransferInFlight.
//
// On success the candidate is discarded and the pipeline returns to
// Empty. On failure the candidate and metadata survive so the user can
// retry without reselecting the file.
func (p *Pipeline) Submit(ctx context.Context) (*model.VideoRecord, error) {
	p.mu.Lock()

	if p.state == StateTransferring {
		p.mu.Unlock()
		return nil, ErrTransferInFlight
	}

	if p.file == nil {
		p.mu.Unlock()
		err := &ValidationError{Message: "Please select a video file"}
		p.notifier.Error(err.Message)
		return nil, err
	}

	title := strings.TrimSpace(p.title)
	if err := p.validate.Struct(metadata{Title: title, Description: p.description}); err != nil {
		p.mu.Unlock()
		verr := &ValidationError{Message: metadataMessage(err)}
		p.notifier.Error(verr.Message)
		return nil, verr
	}

	p.state = StateTransferring
	p.progress = 0
	file := *p.file
	kind := p.videoType
	description := p.description
	p.mu.Unlock()

	rec, err := p.uploader.Upload(ctx, kind, file.Path, title, description, func(pct int) {
		p.mu.Lock()
		if pct > p.progress {
			p.progress = pct
		}
		pct = p.progress
		p.mu.Unlock()
		p.notifier.Progress(pct)
	})

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.state = StateFailed
		p.notifier.Error(transferMessage(err))
		return nil, err
	}

	p.state = StateSucceeded
	p.notifier.Success("Video uploaded successfully!")

	if p.OnUploaded != nil {
		if herr := p.OnUploaded(rec, file); herr != nil {
			slog.Warn("upload history not recorded", "error", herr)
		}
	}

	// full reset: the candidate's lifetime ends with the attempt
	p.revokeLocked()
	p.file = nil
	p.title = ""
	p.description = ""
	p.progress = 0
	p.state = StateEmpty

	return rec, nil
}

// Close releases the preview resource unconditionally. Call on teardown.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revokeLocked()
	p.file = nil
	p.state = StateEmpty
}

func (p *Pipeline) revokeLocked() {
	if p.preview != nil {
		p.preview.Revoke()
		p.preview = nil
	}
}

func metadataMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch {
			case fe.Field() == "Title" && fe.Tag() == "required":
				return "Please enter a video title"
			case fe.Field() == "Title":
				return "Title must be 100 characters or fewer"
			case fe.Field() == "Description":
				return "Description must be 500 characters or fewer"
			}
		}
	}
	return "Invalid video details"
}

func transferMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Upload failed"
}
