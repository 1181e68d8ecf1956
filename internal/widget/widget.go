// Package widget implements the upload widget shared by every tool: it stages
// files, validates them against type and size limits, and exchanges them for a
// downloadable result in a single round trip.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/webtoolkit/convkit/internal/blobref"
	"github.com/webtoolkit/convkit/internal/convsdk"
	"github.com/webtoolkit/convkit/internal/utils"
)

// PreviewGrace keeps a preview reference alive long enough for the closing
// transition of the viewer.
const PreviewGrace = 300 * time.Millisecond

const (
	unknownErrorMessage = "An unknown error occurred."
	emptyResultMessage  = "The server returned an empty response."
)

// Deps are the collaborators of a widget. Notifier and Indicator default to no-ops.
type Deps struct {
	Transport Transport
	Notifier  Notifier
	Indicator Indicator
	Refs      *blobref.Registry
}

type Widget struct {
	cfg       Config
	transport Transport
	notifier  Notifier
	indicator Indicator
	refs      *blobref.Registry

	submitting atomic.Bool

	mu      sync.Mutex
	files   []PendingFile
	nextID  uint64
	state   State
	status  string
	result  *SubmissionResult
	preview *blobref.Ref
	closed  bool
}

func New(cfg Config, deps Deps) (*Widget, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Refs == nil {
		return nil, errors.New("widget: object reference registry is required")
	}
	if deps.Transport == nil && cfg.Endpoint != "" {
		return nil, errors.New("widget: transport is required for server tools")
	}
	cfg.applyDefaults()

	w := &Widget{
		cfg:       cfg,
		transport: deps.Transport,
		notifier:  deps.Notifier,
		indicator: deps.Indicator,
		refs:      deps.Refs,
		state:     StateEmpty,
		status:    cfg.IdleStatus,
	}
	if w.notifier == nil {
		w.notifier = nopNotifier{}
	}
	if w.indicator == nil {
		w.indicator = nopIndicator{}
	}
	return w, nil
}

func (w *Widget) Config() Config {
	return w.cfg
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Files returns a snapshot of the staged files in submission order.
func (w *Widget) Files() []PendingFile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.files)
}

// Result returns the outcome of the last completed submission, or nil.
func (w *Widget) Result() *SubmissionResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return nil
	}
	r := *w.result
	return &r
}

// StageFile validates and stages c. A nil candidate clears the widget.
// Single-file widgets replace the staged file, multi-file widgets append.
// A rejected candidate leaves the previously staged files untouched.
func (w *Widget) StageFile(c *Candidate) error {
	if c == nil {
		return w.Clear()
	}
	if w.cfg.Multi {
		_, err := w.AddFiles([]*Candidate{c})
		return err
	}
	if err := w.busy(); err != nil {
		return err
	}

	if err := w.validate(c); err != nil {
		w.reject(err)
		return err
	}

	w.mu.Lock()
	if err := w.busyLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.nextID++
	w.files = []PendingFile{{ID: w.nextID, Candidate: *c}}
	stale := w.dropResultsLocked()
	w.state = StateStaged
	w.status = fmt.Sprintf("File: %s (%s). Ready.", c.Name, utils.FormatBytes(c.Size))
	w.mu.Unlock()

	w.release(stale...)
	slog.Debug("widget stage", "widget", w.cfg.Name, "file", c.Name, "size", c.Size, "type", c.MIMEType)
	return nil
}

// AddFiles stages a batch. Files with the wrong type or size are skipped with a
// notification. The first file that would push the staged total past the
// cumulative cap stops the batch; files before it stay staged.
// Single-file widgets stage the first candidate only.
func (w *Widget) AddFiles(batch []*Candidate) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	if !w.cfg.Multi {
		if err := w.StageFile(batch[0]); err != nil {
			return 0, err
		}
		return 1, nil
	}
	w.mu.Lock()
	if err := w.busyLocked(); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	total := int64(0)
	for _, f := range w.files {
		total += f.Size
	}
	w.mu.Unlock()

	var (
		accepted []PendingFile
		errs     []error
	)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if err := w.validate(c); err != nil {
			w.reject(err)
			errs = append(errs, err)
			continue
		}
		if total+c.Size > w.cfg.MaxTotalSize {
			err := &ValidationError{
				Reason:  ReasonTotal,
				File:    c.Name,
				Message: fmt.Sprintf("Total file size limit (%s) reached.", utils.FormatBytes(w.cfg.MaxTotalSize)),
			}
			w.reject(err)
			errs = append(errs, err)
			break
		}
		total += c.Size
		accepted = append(accepted, PendingFile{Candidate: *c})
	}

	if len(accepted) == 0 {
		return 0, errors.Join(errs...)
	}

	w.mu.Lock()
	if err := w.busyLocked(); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	files := slices.Clone(w.files)
	staged, added := int64(0), 0
	for _, f := range files {
		staged += f.Size
	}
	for _, f := range accepted {
		// the list may have grown since the batch was checked
		if staged+f.Size > w.cfg.MaxTotalSize {
			break
		}
		staged += f.Size
		w.nextID++
		f.ID = w.nextID
		files = append(files, f)
		added++
	}
	w.files = files
	stale := w.dropResultsLocked()
	w.state = StateStaged
	w.status = w.listStatusLocked()
	w.mu.Unlock()

	w.release(stale...)
	slog.Debug("widget add files", "widget", w.cfg.Name, "added", added, "rejected", len(errs))
	return added, errors.Join(errs...)
}

// Clear drops every staged file and result and returns to empty.
func (w *Widget) Clear() error {
	w.mu.Lock()
	if err := w.busyLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.files = nil
	stale := w.dropResultsLocked()
	w.state = StateEmpty
	w.status = w.cfg.IdleStatus
	w.mu.Unlock()

	w.release(stale...)
	return nil
}

// RemoveFile removes one staged file by ID. Unknown IDs are ignored.
func (w *Widget) RemoveFile(id uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.busyLocked(); err != nil {
		return err
	}

	idx := slices.IndexFunc(w.files, func(f PendingFile) bool { return f.ID == id })
	if idx < 0 {
		return nil
	}
	w.files = slices.Delete(slices.Clone(w.files), idx, idx+1)
	if len(w.files) == 0 {
		w.state = StateEmpty
		w.status = w.cfg.IdleStatus
	} else {
		w.status = w.listStatusLocked()
	}
	return nil
}

// Reorder moves the file at from to position to. The new order is built on a
// copy and swapped in whole, so readers see the old or the new list only.
func (w *Widget) Reorder(from, to int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.busyLocked(); err != nil {
		return err
	}

	n := len(w.files)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d files", ErrInvalidIndex, from, to, n)
	}
	if from == to {
		return nil
	}

	next := slices.Clone(w.files)
	moved := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, moved)
	w.files = next
	return nil
}

// Submit exchanges the staged files for a result. It returns ErrTooFewFiles
// without any request when the minimum count is not met, and ErrSubmitInProgress
// when another submission is running. Server and transport failures are
// reported through the returned result, not as errors.
func (w *Widget) Submit(ctx context.Context) (*SubmissionResult, error) {
	if !w.submitting.CompareAndSwap(false, true) {
		slog.Debug("widget submit ignored", "widget", w.cfg.Name, "reason", "in progress")
		return nil, ErrSubmitInProgress
	}
	defer w.submitting.Store(false)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, ErrClosed
	}
	files := slices.Clone(w.files)
	if len(files) < w.cfg.MinFiles {
		w.mu.Unlock()
		msg := "Please upload a file first."
		if w.cfg.MinFiles > 1 {
			msg = fmt.Sprintf("Please upload at least %d files.", w.cfg.MinFiles)
		}
		w.notifier.Notify(msg)
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewFiles, len(files), w.cfg.MinFiles)
	}
	stale := w.dropResultsLocked()
	w.state = StateSubmitting
	w.status = "Processing..."
	w.mu.Unlock()
	w.release(stale...)

	w.indicator.Show()
	defer w.indicator.Hide()

	slog.Info("widget submit", "widget", w.cfg.Name, "files", len(files), "endpoint", w.cfg.Endpoint)

	var (
		out *Output
		err error
	)
	if w.cfg.Local != nil {
		out, err = w.cfg.Local(ctx, files, w.cfg.Params)
		if errors.Is(err, ErrUseServer) && w.transport != nil {
			out, err = w.roundTrip(ctx, files)
		}
	} else {
		out, err = w.roundTrip(ctx, files)
	}
	if err == nil && (out == nil || len(out.Data) == 0) {
		err = errors.New(emptyResultMessage)
	}

	if err != nil {
		return w.fail(err.Error()), nil
	}
	return w.succeed(files, out), nil
}

func (w *Widget) roundTrip(ctx context.Context, files []PendingFile) (*Output, error) {
	form := &convsdk.Form{Values: url.Values{}}
	for _, f := range files {
		form.Files = append(form.Files, convsdk.FilePart{
			Field:       w.cfg.FileField,
			Name:        f.Name,
			ContentType: f.MIMEType,
			Size:        f.Size,
			Open:        f.Open,
		})
	}
	for k, v := range w.cfg.Params {
		form.Values.Set(k, v)
	}

	resp, err := w.transport.Post(ctx, w.cfg.Endpoint, form)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		msg := strings.TrimSpace(string(resp.Body))
		if msg == "" {
			msg = unknownErrorMessage
		}
		slog.Warn("widget submit rejected", "widget", w.cfg.Name, "status", resp.StatusCode, "message", msg)
		return nil, errors.New(msg)
	}

	out := &Output{
		Data:     resp.Body,
		MIMEType: utils.BaseMediaType(resp.ContentType()),
		FileName: FileNameFromDisposition(resp.Header),
	}
	if w.cfg.ResultField != "" {
		text, err := convsdk.DecodeTextField(resp.Body, w.cfg.ResultField)
		if err != nil {
			return nil, err
		}
		out.Data = []byte(text)
		out.MIMEType = "text/plain"
	}
	if out.MIMEType == "" {
		out.MIMEType = utils.OctetStream
	}
	return out, nil
}

func (w *Widget) succeed(files []PendingFile, out *Output) *SubmissionResult {
	name := out.FileName
	if name == "" {
		name = w.cfg.defaultName(files)
	}

	ref, err := w.refs.Acquire(out.Data, out.MIMEType, name)
	if err != nil {
		return w.fail(err.Error())
	}

	status := out.Status
	if status == "" {
		status = fmt.Sprintf("Done: %s (%s).", name, utils.FormatBytes(ref.Size))
	}
	res := &SubmissionResult{
		Success:  true,
		Ref:      ref,
		FileName: name,
		Status:   status,
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.release(ref)
		slog.Debug("widget result dropped", "widget", w.cfg.Name, "reason", "closed")
		return &SubmissionResult{Error: ErrClosed.Error(), Status: status}
	}
	w.result = res
	w.state = StateDone
	w.status = status
	w.mu.Unlock()

	w.notifier.Notify(w.cfg.SuccessMessage)
	slog.Info("widget submit done", "widget", w.cfg.Name, "file", name, "size", ref.Size, "ref", ref.URL)

	r := *res
	return &r
}

func (w *Widget) fail(msg string) *SubmissionResult {
	res := &SubmissionResult{
		Error:  msg,
		Status: "Failed: " + msg,
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		r := *res
		return &r
	}
	w.result = res
	w.state = StateFailed
	w.status = res.Status
	w.mu.Unlock()

	w.notifier.Notify("An error occurred: " + msg)
	slog.Warn("widget submit failed", "widget", w.cfg.Name, "error", msg)

	r := *res
	return &r
}

// Preview issues a fresh reference to the current result for viewing.
// The previous preview reference is released first.
func (w *Widget) Preview() (*blobref.Ref, error) {
	w.mu.Lock()
	res := w.result
	old := w.preview
	w.preview = nil
	w.mu.Unlock()
	w.release(old)

	if res == nil || !res.Success {
		w.notifier.Notify("No result yet. Run the tool first.")
		return nil, ErrNoResult
	}

	ref, err := w.refs.Duplicate(res.Ref)
	if err != nil {
		return nil, fmt.Errorf("widget preview: %w", err)
	}

	w.mu.Lock()
	w.preview = ref
	w.mu.Unlock()
	return ref, nil
}

// ResetAfterView releases the preview reference once PreviewGrace has passed.
func (w *Widget) ResetAfterView() {
	w.mu.Lock()
	p := w.preview
	w.preview = nil
	w.mu.Unlock()

	w.refs.ReleaseAfter(p, PreviewGrace)
}

// Close releases every reference held by the widget. A submission still in
// flight completes without storing its result, and later calls fail with
// ErrClosed.
func (w *Widget) Close() error {
	w.mu.Lock()
	w.closed = true
	stale := w.dropResultsLocked()
	w.files = nil
	w.state = StateEmpty
	w.mu.Unlock()

	w.release(stale...)
	return nil
}

func (w *Widget) busy() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busyLocked()
}

// busyLocked reports why the staged list cannot change right now.
func (w *Widget) busyLocked() error {
	switch {
	case w.closed:
		return ErrClosed
	case w.state == StateSubmitting:
		return ErrSubmitInProgress
	}
	return nil
}

func (w *Widget) validate(c *Candidate) error {
	if !w.cfg.TakesFiles() {
		return &ValidationError{Reason: ReasonNoFiles, File: c.Name, Message: "This tool does not take files."}
	}
	if !w.cfg.Accepts(c.Name, c.MIMEType) {
		msg := "Unsupported file format."
		if w.cfg.AcceptLabel != "" {
			msg = fmt.Sprintf("Unsupported file format. Please choose %s.", w.cfg.AcceptLabel)
		}
		return &ValidationError{Reason: ReasonType, File: c.Name, Message: msg}
	}
	if c.Size > w.cfg.MaxFileSize {
		return &ValidationError{
			Reason:  ReasonSize,
			File:    c.Name,
			Message: fmt.Sprintf("File is too large. Maximum size is %s.", utils.FormatBytes(w.cfg.MaxFileSize)),
		}
	}
	return nil
}

// reject surfaces a validation failure. Staged files and state stay as they were.
func (w *Widget) reject(err error) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return
	}

	w.mu.Lock()
	switch ve.Reason {
	case ReasonType:
		w.status = "Invalid file format."
	case ReasonSize:
		w.status = "File too large."
	case ReasonTotal:
		w.status = "Total size limit reached."
	default:
		w.status = ve.Message
	}
	w.mu.Unlock()

	w.notifier.Notify(ve.Message)
	slog.Debug("widget reject", "widget", w.cfg.Name, "file", ve.File, "reason", ve.Reason)
}

// dropResultsLocked detaches the result and preview references so they can be
// released outside the lock.
func (w *Widget) dropResultsLocked() []*blobref.Ref {
	var stale []*blobref.Ref
	if w.result != nil && w.result.Ref != nil {
		stale = append(stale, w.result.Ref)
	}
	if w.preview != nil {
		stale = append(stale, w.preview)
	}
	w.result = nil
	w.preview = nil
	return stale
}

func (w *Widget) release(refs ...*blobref.Ref) {
	for _, r := range refs {
		w.refs.Release(r)
	}
}

func (w *Widget) listStatusLocked() string {
	total := int64(0)
	for _, f := range w.files {
		total += f.Size
	}
	if len(w.files) == 1 {
		return fmt.Sprintf("File: %s (%s). Ready.", w.files[0].Name, utils.FormatBytes(total))
	}
	return fmt.Sprintf("%d files (%s). Ready.", len(w.files), utils.FormatBytes(total))
}
