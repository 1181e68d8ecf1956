package convsdk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/imroc/req/v3"
	"github.com/webtoolkit/convkit/internal/utils"
	"github.com/webtoolkit/convkit/internal/version"
)

// Client talks to the conversion server. Every call is a single multipart POST,
// there are no retries and no client side timeout; the caller's context decides.
type Client struct {
	client   *req.Client
	baseURL  string
	progress ProgressCallback
}

const progressInterval = 500 * time.Millisecond

func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoServerURL
	}
	if err := utils.ValidateServerURL(baseURL); err != nil {
		return nil, fmt.Errorf("convsdk: %w", err)
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetUserAgent(version.UserAgent()).
		SetTimeout(0).
		SetCommonRetryCount(0).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &Client{
		client:  client,
		baseURL: baseURL,
	}, nil
}

// SetProgress registers a callback for upload progress across all files of a
// request.
func (c *Client) SetProgress(cb ProgressCallback) *Client {
	c.progress = cb
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post uploads form to endpoint and reads the whole reply. Non-2xx replies are
// not errors here: the caller decides what the status means. A *RequestError is
// returned when no reply was received.
func (c *Client) Post(ctx context.Context, endpoint string, form *Form) (*Response, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if form == nil {
		form = &Form{}
	}

	r := c.client.R().
		SetContext(ctx).
		EnableForceMultipart()

	for _, f := range form.Files {
		r.SetFileUpload(req.FileUpload{
			ParamName:      f.Field,
			FileName:       f.Name,
			GetFileContent: f.Open,
			FileSize:       f.Size,
			ContentType:    f.ContentType,
		})
	}
	if len(form.Values) > 0 {
		r.SetFormDataFromValues(form.Values)
	}
	if c.progress != nil && len(form.Files) > 0 {
		r.SetUploadCallbackWithInterval(uploadTracker(form.Files, c.progress), progressInterval)
	}

	start := time.Now()
	resp, err := r.Post(endpoint)
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, Err: err}
	}

	body, err := resp.ToBytes()
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	slog.Debug("convsdk post", "url", utils.JoinURL(c.baseURL, endpoint), "files", len(form.Files), "status", resp.GetStatusCode(), "size", len(body), "took", time.Since(start))

	return &Response{
		StatusCode: resp.GetStatusCode(),
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// uploadTracker folds per-file upload callbacks into one running total. Parts
// are written in order, so progress is tracked per part rather than per name:
// two files may share a base name.
func uploadTracker(files []FilePart, cb ProgressCallback) req.UploadCallback {
	var (
		mu    sync.Mutex
		total int64
		cur   int
		sent  = make([]int64, len(files))
	)
	for _, f := range files {
		total += f.Size
	}
	return func(info req.UploadInfo) {
		mu.Lock()
		if len(sent) == 0 {
			mu.Unlock()
			return
		}
		// a finished part or a different name means the next part has started
		for cur < len(files)-1 && (sent[cur] >= files[cur].Size || files[cur].Name != info.FileName) {
			cur++
			if files[cur].Name == info.FileName {
				break
			}
		}
		sent[cur] = info.UploadedSize
		var n int64
		for _, v := range sent {
			n += v
		}
		mu.Unlock()
		cb(min(n, total), total)
	}
}

// DecodeTextField extracts a string field from a JSON reply, e.g. `summary` from
// the summarizer endpoint.
func DecodeTextField(body []byte, field string) (string, error) {
	var payload map[string]any
	if err := jsonUnmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("convsdk: decode json: %w", err)
	}

	v, ok := payload[field]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}

	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("convsdk: field %q is %T, want string", field, v)
	}
	return s, nil
}
