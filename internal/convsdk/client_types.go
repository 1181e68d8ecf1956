package convsdk

import (
	"io"
	"net/http"
	"net/url"
)

const (
	HeaderUserAgent          = "User-Agent"
	HeaderContentDisposition = "Content-Disposition"
)

// ProgressCallback receives the bytes uploaded so far and the total to upload.
type ProgressCallback func(uploaded, total int64)

// FilePart is one file field of a multipart upload.
type FilePart struct {
	Field       string // form field name, e.g. `file` or `pdfs[]`
	Name        string // file name sent with the part
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Form is the multipart payload of a single conversion request.
type Form struct {
	Files  []FilePart
	Values url.Values
}

// Response is the fully read reply of the conversion server.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}
