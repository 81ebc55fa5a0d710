package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/kvasir-media/clipstream/internal/model"
)

// File is a candidate source for upload: a local file plus the metadata
// the pipeline validates against.
type File struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

// Constraint is the per-type upload limit.
//
// MaxDuration is advisory for short videos: the platform communicates it
// but the client never probes media duration before upload.
type Constraint struct {
	MaxBytes    int64
	MaxDuration time.Duration
	Label       string
}

var constraints = map[model.VideoType]Constraint{
	model.TypeShort: {MaxBytes: 50 << 20, MaxDuration: 45 * time.Second, Label: "50MB"},
	model.TypeLong:  {MaxBytes: 500 << 20, Label: "500MB"},
}

// ConstraintFor returns the limit for the given video type.
func ConstraintFor(t model.VideoType) Constraint {
	if c, ok := constraints[t]; ok {
		return c
	}
	return constraints[model.TypeLong]
}

// ValidationError is a local, pre-flight rejection. It never reaches the
// network and the message is shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validateFile(f File, t model.VideoType) error {
	c := ConstraintFor(t)
	if f.Size > c.MaxBytes {
		return &ValidationError{Message: fmt.Sprintf("File size exceeds %s limit", c.Label)}
	}
	if !strings.HasPrefix(f.ContentType, "video/") {
		return &ValidationError{Message: "Please select a valid video file"}
	}
	return nil
}
