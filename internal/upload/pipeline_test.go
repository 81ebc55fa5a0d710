package upload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kvasir-media/clipstream/internal/api"
	"github.com/kvasir-media/clipstream/internal/model"
)

type fakePreview struct {
	mu      sync.Mutex
	revoked int
}

func (f *fakePreview) URL() string { return "http://127.0.0.1:0/preview/fake" }

func (f *fakePreview) Revoke() {
	f.mu.Lock()
	f.revoked++
	f.mu.Unlock()
}

func (f *fakePreview) revokeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked
}

type previewTracker struct {
	created []*fakePreview
}

func (t *previewTracker) factory() PreviewFactory {
	return func(path, contentType string) (PreviewHandle, error) {
		h := &fakePreview{}
		t.created = append(t.created, h)
		return h, nil
	}
}

func (t *previewTracker) live() int {
	n := 0
	for _, h := range t.created {
		if h.revokeCount() == 0 {
			n++
		}
	}
	return n
}

type fakeUploader struct {
	progress []int
	err      error
	record   *model.VideoRecord
	block    chan struct{} // when set, Upload waits before returning
	calls    int
	mu       sync.Mutex
}

func (f *fakeUploader) Upload(ctx context.Context, kind model.VideoType, path, title, description string, onProgress func(int)) (*model.VideoRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	for _, pct := range f.progress {
		onProgress(pct)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	progress  []int
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) Info(msg string) {}

func (n *recordingNotifier) Progress(pct int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, pct)
}

func (n *recordingNotifier) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

func videoFile(size int64) File {
	return File{Path: "/tmp/clip.mp4", Name: "clip.mp4", Size: size, ContentType: "video/mp4"}
}

func TestSelect_RejectsOversizedShort(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	p := New(&fakeUploader{}, tracker.factory(), notifier)

	err := p.Select(videoFile(60 << 20))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "50MB") {
		t.Errorf("expected message to name the 50MB limit, got %q", verr.Message)
	}
	if p.State() != StateEmpty {
		t.Errorf("expected state to remain empty, got %s", p.State())
	}
	if len(tracker.created) != 0 {
		t.Errorf("expected no preview for a rejected file, got %d", len(tracker.created))
	}
}

func TestSelect_LongTypeAllowsLargerFiles(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	p := New(&fakeUploader{}, tracker.factory(), notifier)
	p.SetVideoType(model.TypeLong)

	if err := p.Select(videoFile(60 << 20)); err != nil {
		t.Fatalf("expected 60MiB long video to be accepted: %v", err)
	}
	if p.State() != StateSelected {
		t.Errorf("expected selected state, got %s", p.State())
	}
	if err := p.Select(videoFile(501 << 20)); err == nil {
		t.Error("expected rejection above the 500MB limit")
	}
}

func TestSelect_RejectsNonVideo(t *testing.T) {
	notifier := &recordingNotifier{}
	p := New(&fakeUploader{}, nil, notifier)

	f := videoFile(1 << 20)
	f.ContentType = "application/pdf"
	err := p.Select(f)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSelect_RejectionLeavesPreviousCandidate(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	p := New(&fakeUploader{}, tracker.factory(), notifier)

	first := videoFile(10 << 20)
	if err := p.Select(first); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := p.Select(videoFile(60 << 20)); err == nil {
		t.Fatal("expected oversized replacement to be rejected")
	}

	got := p.File()
	if got == nil || got.Size != first.Size {
		t.Error("previous candidate should survive a rejected selection")
	}
	if tracker.live() != 1 {
		t.Errorf("expected exactly 1 live preview, got %d", tracker.live())
	}
}

func TestSelect_ReplacementRevokesOldPreview(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	p := New(&fakeUploader{}, tracker.factory(), notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := p.Select(videoFile(2 << 20)); err != nil {
		t.Fatalf("select replacement: %v", err)
	}

	if len(tracker.created) != 2 {
		t.Fatalf("expected 2 previews created, got %d", len(tracker.created))
	}
	if tracker.created[0].revokeCount() != 1 {
		t.Errorf("first preview revoked %d times, want 1", tracker.created[0].revokeCount())
	}
	if tracker.live() != 1 {
		t.Errorf("expected exactly 1 live preview, got %d", tracker.live())
	}
}

func TestRemove_RevokesAndClears(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	p := New(&fakeUploader{}, tracker.factory(), notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := p.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if p.State() != StateEmpty {
		t.Errorf("expected empty state after remove, got %s", p.State())
	}
	if p.File() != nil {
		t.Error("expected candidate cleared after remove")
	}
	if tracker.live() != 0 {
		t.Errorf("expected no live previews after remove, got %d", tracker.live())
	}

	// removing again is a no-op
	if err := p.Remove(); err != nil {
		t.Errorf("remove on empty pipeline: %v", err)
	}
}

func TestSetVideoType_DoesNotRevalidateStagedFile(t *testing.T) {
	notifier := &recordingNotifier{}
	p := New(&fakeUploader{}, nil, notifier)
	p.SetVideoType(model.TypeLong)

	if err := p.Select(videoFile(100 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}

	// switching to short does not eject the staged 100MiB file
	p.SetVideoType(model.TypeShort)
	if p.State() != StateSelected {
		t.Errorf("expected staged file to survive a type change, got %s", p.State())
	}
	if p.File() == nil {
		t.Error("candidate should survive a type change")
	}
}

func TestSubmit_RequiresFileAndTitle(t *testing.T) {
	notifier := &recordingNotifier{}
	p := New(&fakeUploader{}, nil, notifier)

	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected error without a staged file")
	}

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.SetTitle("   ")
	_, err := p.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for whitespace title, got %v", err)
	}
	if p.State() != StateSelected {
		t.Errorf("failed preconditions must not change state, got %s", p.State())
	}
}

func TestSubmit_RejectsOverlongMetadata(t *testing.T) {
	notifier := &recordingNotifier{}
	p := New(&fakeUploader{}, nil, notifier)
	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}

	p.SetTitle(strings.Repeat("x", 101))
	if _, err := p.Submit(context.Background()); err == nil {
		t.Error("expected rejection of a 101-character title")
	}

	p.SetTitle("ok")
	p.SetDescription(strings.Repeat("x", 501))
	if _, err := p.Submit(context.Background()); err == nil {
		t.Error("expected rejection of a 501-character description")
	}
}

func TestSubmit_SuccessResetsEverything(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	uploader := &fakeUploader{
		progress: []int{10, 50, 100},
		record:   &model.VideoRecord{ID: "vid-1"},
	}
	p := New(uploader, tracker.factory(), notifier)

	var hookRecord *model.VideoRecord
	p.OnUploaded = func(rec *model.VideoRecord, f File) error {
		hookRecord = rec
		return nil
	}

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.SetTitle("My clip")
	p.SetDescription("a description")

	rec, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec == nil || rec.ID != "vid-1" {
		t.Fatalf("expected uploaded record back, got %+v", rec)
	}
	if hookRecord == nil || hookRecord.ID != "vid-1" {
		t.Error("OnUploaded hook did not receive the record")
	}

	if p.State() != StateEmpty {
		t.Errorf("expected empty state after success, got %s", p.State())
	}
	if p.File() != nil {
		t.Error("candidate should be discarded after success")
	}
	if p.Progress() != 0 {
		t.Errorf("progress should reset, got %d", p.Progress())
	}
	if tracker.live() != 0 {
		t.Errorf("preview should be revoked after success, got %d live", tracker.live())
	}
	if len(notifier.successes) < 2 {
		t.Errorf("expected select + upload success notifications, got %v", notifier.successes)
	}
}

func TestSubmit_FailurePreservesCandidate(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	uploader := &fakeUploader{
		progress: []int{25},
		err:      &api.Error{Status: 500, Message: "Storage quota exceeded"},
	}
	p := New(uploader, tracker.factory(), notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.SetTitle("My clip")

	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}

	if p.State() != StateFailed {
		t.Errorf("expected failed state, got %s", p.State())
	}
	if p.File() == nil {
		t.Error("candidate must survive a failed transfer for retry")
	}
	if tracker.live() != 1 {
		t.Errorf("preview must survive a failed transfer, got %d live", tracker.live())
	}
	if notifier.lastError() != "Storage quota exceeded" {
		t.Errorf("expected server message verbatim, got %q", notifier.lastError())
	}

	// retry works without reselecting
	uploader.err = nil
	uploader.record = &model.VideoRecord{ID: "vid-2"}
	rec, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if rec.ID != "vid-2" {
		t.Errorf("retry returned %q, want vid-2", rec.ID)
	}
}

func TestSubmit_GenericMessageWithoutServerText(t *testing.T) {
	notifier := &recordingNotifier{}
	uploader := &fakeUploader{err: errors.New("connection reset")}
	p := New(uploader, nil, notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.SetTitle("My clip")

	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	if notifier.lastError() != "Upload failed" {
		t.Errorf("expected generic fallback, got %q", notifier.lastError())
	}
}

func TestSubmit_SingleFlight(t *testing.T) {
	notifier := &recordingNotifier{}
	uploader := &fakeUploader{block: make(chan struct{})}
	p := New(uploader, nil, notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.SetTitle("My clip")

	done := make(chan struct{})
	go func() {
		p.Submit(context.Background())
		close(done)
	}()

	// wait until the transfer is in flight
	for p.State() != StateTransferring {
		time.Sleep(time.Millisecond)
	}

	if _, err := p.Submit(context.Background()); !errors.Is(err, ErrTransferInFlight) {
		t.Errorf("expected ErrTransferInFlight, got %v", err)
	}
	if err := p.Remove(); !errors.Is(err, ErrTransferInFlight) {
		t.Errorf("remove during transfer: expected ErrTransferInFlight, got %v", err)
	}

	uploader.mu.Lock()
	calls := uploader.calls
	uploader.mu.Unlock()
	if calls != 1 {
		t.Errorf("expected exactly 1 transfer, got %d", calls)
	}

	close(uploader.block)
	<-done
}

func TestSubmit_ProgressMonotone(t *testing.T) {
	notifier := &recordingNotifier{}
	// out-of-order and duplicate reports must never move progress backwards
	uploader := &fakeUploader{
		progress: []int{10, 40, 30, 40, 99, 100},
		record:   &model.VideoRecord{ID: "vid-3"},
	}
	p := New(uploader, nil, notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.SetTitle("My clip")
	if _, err := p.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	last := -1
	for _, pct := range notifier.progress {
		if pct < last {
			t.Fatalf("progress went backwards: %v", notifier.progress)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("progress out of range: %v", notifier.progress)
		}
		last = pct
	}
	if last != 100 {
		t.Errorf("expected final progress 100, got %d", last)
	}
}

func TestClose_RevokesPreview(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := &previewTracker{}
	p := New(&fakeUploader{}, tracker.factory(), notifier)

	if err := p.Select(videoFile(1 << 20)); err != nil {
		t.Fatalf("select: %v", err)
	}
	p.Close()

	if tracker.live() != 0 {
		t.Errorf("expected teardown to revoke previews, got %d live", tracker.live())
	}
	if tracker.created[0].revokeCount() != 1 {
		t.Errorf("preview revoked %d times, want exactly 1", tracker.created[0].revokeCount())
	}
}
