package views

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hyperjump/findly/internal/client"
	"github.com/hyperjump/findly/internal/models"
	"go.uber.org/zap"
)

// MsgUploadFailed is shown when the service gave no reason for a failed upload.
const MsgUploadFailed = "Upload failed"

// MaxAdvisorySize is the size the upload view advertises. It is not enforced.
const MaxAdvisorySize = 10 << 20

// AcceptedExtensions are the file types the upload view advertises.
var AcceptedExtensions = []string{".pdf", ".docx"}

var (
	// ErrNoFile is returned by Upload when no file is selected.
	ErrNoFile = errors.New("views: no file selected")
	// ErrBusy is returned by Upload while another upload is in flight.
	ErrBusy = errors.New("views: an upload is already in progress")
)

// UploadAPI is the part of the portal client used by the upload view.
type UploadAPI interface {
	Upload(ctx context.Context, filename string, content io.Reader, token string) (*models.UploadSuccess, error)
}

// File is a file chosen for upload.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// FileFromPath selects the file at path.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("select %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("select %s: is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// NewFile wraps in-memory content.
func NewFile(name string, content []byte) File {
	return File{
		Name: name,
		Size: int64(len(content)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(content)), nil },
	}
}

// Open returns the file content.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("open %s: no content", f.Name)
	}
	return f.open()
}

// AdvisoryWarning describes how f departs from the advertised limits, or returns "".
// The upload is still allowed.
func AdvisoryWarning(f File) string {
	var notes []string
	ext := strings.ToLower(filepath.Ext(f.Name))
	accepted := false
	for _, a := range AcceptedExtensions {
		if ext == a {
			accepted = true
			break
		}
	}
	if !accepted {
		notes = append(notes, fmt.Sprintf("%s is not a PDF or DOCX file", f.Name))
	}
	if f.Size > MaxAdvisorySize {
		notes = append(notes, fmt.Sprintf("%s is larger than %d MB", f.Name, MaxAdvisorySize>>20))
	}
	return strings.Join(notes, "; ")
}

// UploadState is what the upload view shows.
type UploadState struct {
	Selected  *File
	Uploading bool
	Outcome   models.UploadOutcome
}

// Upload is the adapter behind the upload view.
type Upload struct {
	api  UploadAPI
	opts options
	life lifetime

	mu    sync.Mutex
	state UploadState
}

// NewUpload returns an upload adapter.
func NewUpload(api UploadAPI, opts ...Option) *Upload {
	return &Upload{api: api, opts: buildOptions(opts)}
}

// Activate starts a new view lifetime.
func (u *Upload) Activate() {
	u.life.activate()
}

// Deactivate ends the view lifetime.
func (u *Upload) Deactivate() {
	u.life.deactivate()
}

// State returns a copy of the current state.
func (u *Upload) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Select chooses f for the next upload and clears the previous outcome.
func (u *Upload) Select(f File) {
	u.mu.Lock()
	u.state.Selected = &f
	u.state.Outcome = nil
	u.mu.Unlock()
	if w := AdvisoryWarning(f); w != "" {
		u.opts.logger.Info("upload outside advertised limits", zap.String("warning", w))
	}
	u.opts.onChange()
}

// Reset drops the selection and outcome.
func (u *Upload) Reset() {
	u.mu.Lock()
	u.state = UploadState{Uploading: u.state.Uploading}
	u.mu.Unlock()
	u.opts.onChange()
}

// Upload sends the selected file with token. Service and transport failures are reported in the
// returned UploadFailure, not as an error; errors are only ErrNoFile and ErrBusy.
func (u *Upload) Upload(ctx context.Context, token string) (models.UploadOutcome, error) {
	u.mu.Lock()
	if u.state.Selected == nil {
		u.mu.Unlock()
		return nil, ErrNoFile
	}
	if u.state.Uploading {
		u.mu.Unlock()
		return nil, ErrBusy
	}
	file := u.state.Selected
	u.state.Uploading = true
	u.state.Outcome = nil
	u.mu.Unlock()
	u.opts.onChange()

	gen := u.life.current()
	outcome := u.send(ctx, *file, token)

	applied := u.life.commit(gen, func() {
		u.mu.Lock()
		u.state.Outcome = outcome
		if outcome.Succeeded() && u.state.Selected == file {
			u.state.Selected = nil
		}
		u.mu.Unlock()
	})
	u.mu.Lock()
	u.state.Uploading = false
	u.mu.Unlock()
	if !applied {
		u.opts.logger.Debug("discarded upload outcome for inactive view", zap.String("file", file.Name))
	}
	u.opts.onChange()
	return outcome, nil
}

func (u *Upload) send(ctx context.Context, f File, token string) models.UploadOutcome {
	log := u.opts.logger.With(zap.String("file", f.Name), zap.Int64("size", f.Size))
	rc, err := f.Open()
	if err != nil {
		log.Warn("upload could not read file", zap.Error(err))
		return models.UploadFailure{ErrorMessage: MsgUploadFailed}
	}
	defer rc.Close()

	res, err := u.api.Upload(ctx, f.Name, rc, token)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			log.Info("upload rejected", zap.Int("status", apiErr.StatusCode), zap.String("detail", apiErr.Detail))
			return models.UploadFailure{ErrorMessage: apiErr.Detail}
		}
		log.Warn("upload failed", zap.Error(err))
		return models.UploadFailure{ErrorMessage: MsgUploadFailed}
	}
	log.Info("uploaded", zap.String("category", res.Category))
	return *res
}
