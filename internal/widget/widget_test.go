package widget

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webtoolkit/convkit/internal/blobref"
	"github.com/webtoolkit/convkit/internal/convsdk"
	"github.com/webtoolkit/convkit/internal/utils"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

type countingIndicator struct {
	visible atomic.Bool
	shows   atomic.Int32
}

func (i *countingIndicator) Show() {
	i.shows.Add(1)
	i.visible.Store(true)
}

func (i *countingIndicator) Hide() {
	i.visible.Store(false)
}

type fakeTransport struct {
	calls   atomic.Int32
	started chan struct{}
	unblock chan struct{}

	mu    sync.Mutex
	forms []*convsdk.Form
	resp  *convsdk.Response
	err   error
}

func (t *fakeTransport) Post(ctx context.Context, endpoint string, form *convsdk.Form) (*convsdk.Response, error) {
	t.calls.Add(1)
	t.mu.Lock()
	t.forms = append(t.forms, form)
	t.mu.Unlock()

	if t.started != nil {
		close(t.started)
	}
	if t.unblock != nil {
		select {
		case <-t.unblock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if t.err != nil {
		return nil, t.err
	}
	return t.resp, nil
}

func okResponse(body, contentType, disposition string) *convsdk.Response {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	if disposition != "" {
		h.Set(convsdk.HeaderContentDisposition, disposition)
	}
	return &convsdk.Response{StatusCode: http.StatusOK, Header: h, Body: []byte(body)}
}

func sized(name, mimeType string, size int64) *Candidate {
	return &Candidate{
		Name:     name,
		Size:     size,
		MIMEType: mimeType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(name)), nil
		},
	}
}

type fixture struct {
	w         *Widget
	refs      *blobref.Registry
	transport *fakeTransport
	notifier  *recordingNotifier
	indicator *countingIndicator
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	refs, err := blobref.NewRegistry(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { refs.Close() })

	f := &fixture{
		refs:      refs,
		transport: &fakeTransport{resp: okResponse("%PDF-result", "application/pdf", "")},
		notifier:  &recordingNotifier{},
		indicator: &countingIndicator{},
	}
	f.w, err = New(cfg, Deps{
		Transport: f.transport,
		Notifier:  f.notifier,
		Indicator: f.indicator,
		Refs:      refs,
	})
	require.NoError(t, err)
	return f
}

func mergeConfig() Config {
	return Config{
		Name:         "merge-pdf",
		Endpoint:     "/gabung-pdf/combine",
		FileField:    "pdfs[]",
		AcceptTypes:  mapset.NewSet("application/pdf"),
		AcceptExts:   mapset.NewSet("pdf"),
		Multi:        true,
		MinFiles:     2,
		MaxFileSize:  100 * utils.MiB,
		MaxTotalSize: 100 * utils.MiB,
		DefaultName:  "gabung_web_toolkit.pdf",
	}
}

func compressConfig() Config {
	return Config{
		Name:        "compress-pdf",
		Endpoint:    "/kompres-pdf/process",
		FileField:   "file",
		AcceptTypes: mapset.NewSet("application/pdf"),
		MinFiles:    1,
		MaxFileSize: 16 * utils.MiB,
		Params:      map[string]string{"level": "medium"},
		DefaultName: "compressed.pdf",
	}
}

func TestNew_Validation(t *testing.T) {
	refs, err := blobref.NewRegistry(t.TempDir())
	require.NoError(t, err)
	defer refs.Close()

	_, err = New(Config{Endpoint: "/x"}, Deps{Refs: refs, Transport: &fakeTransport{}})
	assert.Error(t, err)

	_, err = New(compressConfig(), Deps{Transport: &fakeTransport{}})
	assert.Error(t, err)

	_, err = New(compressConfig(), Deps{Refs: refs})
	assert.Error(t, err)

	cfg := compressConfig()
	cfg.MinFiles = 2
	_, err = New(cfg, Deps{Refs: refs, Transport: &fakeTransport{}})
	assert.Error(t, err)
}

func TestStageFile_Replaces(t *testing.T) {
	f := newFixture(t, compressConfig())
	assert.Equal(t, StateEmpty, f.w.State())

	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1024)))
	require.NoError(t, f.w.StageFile(sized("b.pdf", "application/pdf", 2048)))

	files := f.w.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "b.pdf", files[0].Name)
	assert.Equal(t, StateStaged, f.w.State())
	assert.Contains(t, f.w.Status(), "b.pdf")
}

func TestStageFile_WrongTypeKeepsState(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1024)))

	err := f.w.StageFile(sized("photo.png", "image/png", 10))
	assert.True(t, IsValidation(err, ReasonType))
	assert.Equal(t, "Invalid file format.", f.w.Status())
	assert.Equal(t, StateStaged, f.w.State())
	require.Len(t, f.w.Files(), 1)
	assert.Equal(t, "a.pdf", f.w.Files()[0].Name)
}

func TestStageFile_OversizeKeepsState(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1024)))

	err := f.w.StageFile(sized("huge.pdf", "application/pdf", 16*utils.MiB+1))
	assert.True(t, IsValidation(err, ReasonSize))
	assert.Equal(t, "File too large.", f.w.Status())
	assert.Equal(t, "a.pdf", f.w.Files()[0].Name)
	assert.Len(t, f.notifier.Messages(), 1)
	assert.Contains(t, f.notifier.Messages()[0], "16 MiB")
}

func TestStageFile_NilClears(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1024)))
	require.NoError(t, f.w.StageFile(nil))
	assert.Empty(t, f.w.Files())
	assert.Equal(t, StateEmpty, f.w.State())
}

func TestAddFiles_TotalCapStopsBatch(t *testing.T) {
	f := newFixture(t, mergeConfig())

	added, err := f.w.AddFiles([]*Candidate{
		sized("a.pdf", "application/pdf", 5*utils.MiB),
		sized("b.pdf", "application/pdf", 90*utils.MiB),
		sized("c.pdf", "application/pdf", 10*utils.MiB),
		sized("d.pdf", "application/pdf", 1*utils.MiB),
	})
	assert.Equal(t, 2, added)
	assert.True(t, IsValidation(err, ReasonTotal))

	files := f.w.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, "b.pdf", files[1].Name)
	assert.Equal(t, "Total size limit reached.", f.w.Status())
}

func TestAddFiles_SkipsWrongType(t *testing.T) {
	f := newFixture(t, mergeConfig())

	added, err := f.w.AddFiles([]*Candidate{
		sized("a.pdf", "application/pdf", 10),
		sized("notes.txt", "text/plain", 10),
		sized("b.pdf", "application/pdf", 10),
	})
	assert.Equal(t, 2, added)
	assert.True(t, IsValidation(err, ReasonType))
	assert.Len(t, f.w.Files(), 2)
	assert.Equal(t, "2 files (20 B). Ready.", f.w.Status())
}

func TestAddFiles_UniqueIDs(t *testing.T) {
	f := newFixture(t, mergeConfig())
	for range 3 {
		_, err := f.w.AddFiles([]*Candidate{sized("a.pdf", "application/pdf", 10)})
		require.NoError(t, err)
	}

	seen := map[uint64]bool{}
	for _, pf := range f.w.Files() {
		assert.False(t, seen[pf.ID])
		seen[pf.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestReorder(t *testing.T) {
	f := newFixture(t, mergeConfig())
	_, err := f.w.AddFiles([]*Candidate{
		sized("a.pdf", "application/pdf", 1),
		sized("b.pdf", "application/pdf", 1),
		sized("c.pdf", "application/pdf", 1),
	})
	require.NoError(t, err)

	require.NoError(t, f.w.Reorder(0, 2))
	names := func() []string {
		var out []string
		for _, pf := range f.w.Files() {
			out = append(out, pf.Name)
		}
		return out
	}
	assert.Equal(t, []string{"b.pdf", "c.pdf", "a.pdf"}, names())

	require.NoError(t, f.w.Reorder(2, 0))
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, names())

	assert.ErrorIs(t, f.w.Reorder(0, 3), ErrInvalidIndex)
	assert.ErrorIs(t, f.w.Reorder(-1, 0), ErrInvalidIndex)
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, names())
}

func TestRemoveFile(t *testing.T) {
	f := newFixture(t, mergeConfig())
	_, err := f.w.AddFiles([]*Candidate{
		sized("a.pdf", "application/pdf", 1),
		sized("b.pdf", "application/pdf", 1),
	})
	require.NoError(t, err)

	files := f.w.Files()
	require.NoError(t, f.w.RemoveFile(files[0].ID))
	require.NoError(t, f.w.RemoveFile(9999))
	require.Len(t, f.w.Files(), 1)
	assert.Equal(t, "b.pdf", f.w.Files()[0].Name)

	require.NoError(t, f.w.RemoveFile(files[1].ID))
	assert.Equal(t, StateEmpty, f.w.State())
}

func TestSubmit_TooFewFilesSendsNothing(t *testing.T) {
	f := newFixture(t, mergeConfig())
	_, err := f.w.AddFiles([]*Candidate{sized("a.pdf", "application/pdf", 1)})
	require.NoError(t, err)

	res, err := f.w.Submit(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrTooFewFiles)
	assert.Equal(t, int32(0), f.transport.calls.Load())
	assert.Equal(t, int32(0), f.indicator.shows.Load())
	assert.Equal(t, []string{"Please upload at least 2 files."}, f.notifier.Messages())

	single := newFixture(t, compressConfig())
	_, err = single.w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrTooFewFiles)
	assert.Equal(t, []string{"Please upload a file first."}, single.notifier.Messages())
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t, mergeConfig())
	_, err := f.w.AddFiles([]*Candidate{
		sized("a.pdf", "application/pdf", 1),
		sized("b.pdf", "application/pdf", 1),
	})
	require.NoError(t, err)

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "gabung_web_toolkit.pdf", res.FileName)
	assert.Equal(t, "application/pdf", res.Ref.MIMEType)
	assert.False(t, f.indicator.visible.Load())
	assert.Equal(t, StateDone, f.w.State())
	assert.Equal(t, 1, f.refs.Outstanding())

	data, err := res.Ref.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-result", string(data))

	require.Len(t, f.transport.forms, 1)
	form := f.transport.forms[0]
	require.Len(t, form.Files, 2)
	assert.Equal(t, "pdfs[]", form.Files[0].Field)
	assert.Equal(t, "a.pdf", form.Files[0].Name)
	assert.Equal(t, "b.pdf", form.Files[1].Name)
}

func TestSubmit_ParamsAndDispositionName(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.resp = okResponse("%PDF", "application/pdf; charset=binary", `attachment; filename="small.pdf"`)
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "small.pdf", res.FileName)
	assert.Equal(t, "application/pdf", res.Ref.MIMEType)
	assert.Equal(t, "medium", f.transport.forms[0].Values.Get("level"))
}

func TestSubmit_ParentDirNameFallsBackToDefault(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.resp = okResponse("%PDF", "application/pdf", `attachment; filename=".."`)
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "compressed.pdf", res.FileName)

	path, err := res.Ref.SaveTo(t.TempDir(), res.FileName)
	require.NoError(t, err)
	assert.Equal(t, "compressed.pdf", filepath.Base(path))
}

func TestSubmit_ServerErrorBody(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.resp = &convsdk.Response{StatusCode: 400, Header: http.Header{}, Body: []byte(" Bad PDF \n")}
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Bad PDF", res.Error)
	assert.Nil(t, res.Ref)
	assert.Equal(t, StateFailed, f.w.State())
	assert.False(t, f.indicator.visible.Load())
	assert.Contains(t, f.notifier.Messages(), "An error occurred: Bad PDF")
	assert.Equal(t, 0, f.refs.Outstanding())
}

func TestSubmit_EmptyErrorBody(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.resp = &convsdk.Response{StatusCode: 500, Header: http.Header{}}
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, unknownErrorMessage, res.Error)
}

func TestSubmit_EmptySuccessBody(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.resp = okResponse("", "application/pdf", `attachment; filename="small.pdf"`)
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Ref)
	assert.Equal(t, emptyResultMessage, res.Error)
	assert.Equal(t, StateFailed, f.w.State())
	assert.Equal(t, 0, f.refs.Outstanding())
}

func TestSubmit_TransportError(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.err = errors.New("connection refused")
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection refused")
	assert.False(t, f.indicator.visible.Load())
	assert.Equal(t, int32(1), f.indicator.shows.Load())
}

func TestSubmit_ConcurrentSecondIsIgnored(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.started = make(chan struct{})
	f.transport.unblock = make(chan struct{})
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	done := make(chan *SubmissionResult, 1)
	go func() {
		res, _ := f.w.Submit(context.Background())
		done <- res
	}()
	<-f.transport.started

	assert.Equal(t, StateSubmitting, f.w.State())
	_, err := f.w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, f.w.StageFile(sized("b.pdf", "application/pdf", 1)), ErrSubmitInProgress)
	assert.ErrorIs(t, f.w.Clear(), ErrSubmitInProgress)

	close(f.transport.unblock)
	res := <-done
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.Equal(t, int32(1), f.transport.calls.Load())
}

func TestSubmit_ReleasesPreviousResult(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	first, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	second, err := f.w.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, first.Ref.Released())
	assert.False(t, second.Ref.Released())
	assert.Equal(t, 1, f.refs.Outstanding())
}

func TestClear_ReleasesEverything(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))
	_, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	_, err = f.w.Preview()
	require.NoError(t, err)
	assert.Equal(t, 2, f.refs.Outstanding())

	require.NoError(t, f.w.Clear())
	assert.Equal(t, 0, f.refs.Outstanding())
	assert.Nil(t, f.w.Result())
	assert.Equal(t, StateEmpty, f.w.State())
}

func TestRestage_ReleasesResult(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))
	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.w.StageFile(sized("b.pdf", "application/pdf", 1)))
	assert.True(t, res.Ref.Released())
	assert.Equal(t, StateStaged, f.w.State())
}

func TestPreview(t *testing.T) {
	f := newFixture(t, compressConfig())

	_, err := f.w.Preview()
	assert.ErrorIs(t, err, ErrNoResult)

	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))
	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)

	p, err := f.w.Preview()
	require.NoError(t, err)
	assert.NotEqual(t, res.Ref.URL, p.URL)

	f.w.ResetAfterView()
	assert.False(t, p.Released())
	assert.Eventually(t, p.Released, 2*time.Second, 20*time.Millisecond)
	assert.False(t, res.Ref.Released())
}

func TestClose_ReleasesEverything(t *testing.T) {
	f := newFixture(t, compressConfig())
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))
	_, err := f.w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.w.Close())
	assert.Equal(t, 0, f.refs.Outstanding())
}

func TestClose_DuringSubmitDropsResult(t *testing.T) {
	f := newFixture(t, compressConfig())
	f.transport.started = make(chan struct{})
	f.transport.unblock = make(chan struct{})
	require.NoError(t, f.w.StageFile(sized("a.pdf", "application/pdf", 1)))

	done := make(chan *SubmissionResult, 1)
	go func() {
		res, _ := f.w.Submit(context.Background())
		done <- res
	}()
	<-f.transport.started

	require.NoError(t, f.w.Close())
	close(f.transport.unblock)
	res := <-done

	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Nil(t, res.Ref)
	assert.Nil(t, f.w.Result())
	assert.Equal(t, StateEmpty, f.w.State())
	assert.Equal(t, 0, f.refs.Outstanding())
	assert.Empty(t, f.notifier.Messages())

	assert.ErrorIs(t, f.w.StageFile(sized("b.pdf", "application/pdf", 1)), ErrClosed)
	_, err := f.w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, int32(1), f.transport.calls.Load())
}

func TestMutators_RejectWhileSubmittingState(t *testing.T) {
	f := newFixture(t, mergeConfig())
	_, err := f.w.AddFiles([]*Candidate{
		sized("a.pdf", "application/pdf", 1),
		sized("b.pdf", "application/pdf", 1),
	})
	require.NoError(t, err)
	ids := []uint64{f.w.Files()[0].ID}

	// the submit flag is already clear; the locked state alone must block changes
	f.w.mu.Lock()
	f.w.state = StateSubmitting
	f.w.mu.Unlock()

	_, err = f.w.AddFiles([]*Candidate{sized("c.pdf", "application/pdf", 1)})
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, f.w.StageFile(sized("c.pdf", "application/pdf", 1)), ErrSubmitInProgress)
	assert.ErrorIs(t, f.w.RemoveFile(ids[0]), ErrSubmitInProgress)
	assert.ErrorIs(t, f.w.Reorder(0, 1), ErrSubmitInProgress)
	assert.ErrorIs(t, f.w.Clear(), ErrSubmitInProgress)

	assert.Len(t, f.w.Files(), 2)
	assert.Equal(t, StateSubmitting, f.w.State())

	single := newFixture(t, compressConfig())
	single.w.mu.Lock()
	single.w.state = StateSubmitting
	single.w.mu.Unlock()
	assert.ErrorIs(t, single.w.StageFile(sized("a.pdf", "application/pdf", 1)), ErrSubmitInProgress)
	assert.Empty(t, single.w.Files())
}

func TestSubmit_ResultField(t *testing.T) {
	cfg := Config{
		Name:        "summarizer",
		Endpoint:    "/rangkum/process",
		FileField:   "file",
		ResultField: "summary",
		DefaultName: "rangkum_web_toolkit.txt",
		Params:      map[string]string{"text": "long text", "sentences": "5"},
	}
	f := newFixture(t, cfg)
	f.transport.resp = okResponse(`{"summary":"short text"}`, "application/json", "")

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "text/plain", res.Ref.MIMEType)
	assert.Equal(t, "rangkum_web_toolkit.txt", res.FileName)
	data, err := res.Ref.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "short text", string(data))
	assert.Empty(t, f.transport.forms[0].Files)
}

func TestSubmit_ResultFieldMissing(t *testing.T) {
	cfg := Config{
		Name:        "paraphraser",
		Endpoint:    "/paraphraser/process",
		ResultField: "paraphrased",
	}
	f := newFixture(t, cfg)
	f.transport.resp = okResponse(`{"other":"x"}`, "application/json", "")

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, StateFailed, f.w.State())
}

func TestSubmit_Local(t *testing.T) {
	var got []string
	cfg := Config{
		Name:  "compress-image",
		Multi: false,
		Local: func(ctx context.Context, files []PendingFile, params map[string]string) (*Output, error) {
			for _, pf := range files {
				got = append(got, pf.Name)
			}
			return &Output{Data: []byte("jpeg"), MIMEType: "image/jpeg", Status: "Saved 50%."}, nil
		},
		MinFiles:    1,
		DefaultName: "kompres_gambar_web_toolkit.jpg",
	}
	f := newFixture(t, cfg)
	require.NoError(t, f.w.StageFile(sized("photo.png", "image/png", 4)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, []string{"photo.png"}, got)
	assert.Equal(t, "kompres_gambar_web_toolkit.jpg", res.FileName)
	assert.Equal(t, "Saved 50%.", res.Status)
	assert.Equal(t, int32(0), f.transport.calls.Load())
	assert.False(t, f.indicator.visible.Load())
}

func TestSubmit_LocalFallsBackToServer(t *testing.T) {
	cfg := Config{
		Name:      "convert-image",
		Endpoint:  "/convert-image/process",
		FileField: "image",
		MinFiles:  1,
		Local: func(ctx context.Context, files []PendingFile, params map[string]string) (*Output, error) {
			return nil, ErrUseServer
		},
	}
	f := newFixture(t, cfg)
	f.transport.resp = okResponse("webp", "image/webp", `attachment; filename="photo.webp"`)
	require.NoError(t, f.w.StageFile(sized("photo.png", "image/png", 4)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "photo.webp", res.FileName)
	assert.Equal(t, int32(1), f.transport.calls.Load())
}

func TestSubmit_LocalEmptyOutput(t *testing.T) {
	cfg := Config{
		Name:     "resize-image",
		MinFiles: 1,
		Local: func(ctx context.Context, files []PendingFile, params map[string]string) (*Output, error) {
			return &Output{MIMEType: "image/png"}, nil
		},
	}
	f := newFixture(t, cfg)
	require.NoError(t, f.w.StageFile(sized("photo.png", "image/png", 4)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, emptyResultMessage, res.Error)
	assert.Equal(t, 0, f.refs.Outstanding())
}

func TestSubmit_LocalError(t *testing.T) {
	cfg := Config{
		Name:     "resize-image",
		MinFiles: 1,
		Local: func(ctx context.Context, files []PendingFile, params map[string]string) (*Output, error) {
			return nil, errors.New("image: unknown format")
		},
	}
	f := newFixture(t, cfg)
	require.NoError(t, f.w.StageFile(sized("photo.png", "image/png", 4)))

	res, err := f.w.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "image: unknown format", res.Error)
}

func TestTextOnlyWidgetRejectsFiles(t *testing.T) {
	f := newFixture(t, Config{Name: "paraphraser", Endpoint: "/paraphraser/process", ResultField: "paraphrased"})
	err := f.w.StageFile(sized("a.txt", "text/plain", 1))
	assert.True(t, IsValidation(err, ReasonNoFiles))
	assert.Empty(t, f.w.Files())
}

func TestConfig_Accepts(t *testing.T) {
	cfg := Config{
		AcceptPrefixes: []string{"image/"},
		AcceptTypes:    mapset.NewSet("application/pdf"),
		AcceptExts:     mapset.NewSet("ods"),
	}
	assert.True(t, cfg.Accepts("a.png", "image/png"))
	assert.True(t, cfg.Accepts("a.pdf", "application/pdf; charset=binary"))
	assert.True(t, cfg.Accepts("sheet.ODS", ""))
	assert.False(t, cfg.Accepts("a.txt", "text/plain"))

	assert.True(t, (&Config{}).Accepts("anything.bin", "application/octet-stream"))
}

func TestConfig_DefaultName(t *testing.T) {
	cfg := Config{
		DefaultName: "fallback.pdf",
		DefaultNameFor: func(files []PendingFile) string {
			if len(files) == 0 {
				return ""
			}
			return utils.Stem(files[0].Name) + ".pdf"
		},
	}
	assert.Equal(t, "report.pdf", cfg.defaultName([]PendingFile{{Candidate: Candidate{Name: "report.docx"}}}))
	assert.Equal(t, "fallback.pdf", cfg.defaultName(nil))
	assert.Equal(t, DefaultFileName, (&Config{}).defaultName(nil))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "unknown", State(42).String())
}
