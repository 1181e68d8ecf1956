package tools

import (
	"context"
	"net/http"

	"github.com/webtoolkit/convkit/internal/convsdk"
)

type nopTransport struct{}

func (nopTransport) Post(context.Context, string, *convsdk.Form) (*convsdk.Response, error) {
	return &convsdk.Response{StatusCode: http.StatusOK, Header: http.Header{}}, nil
}

type countingTransport struct {
	calls  int
	target string
}

func (t *countingTransport) Post(_ context.Context, _ string, form *convsdk.Form) (*convsdk.Response, error) {
	t.calls++
	t.target = form.Values.Get("target")
	h := http.Header{}
	h.Set("Content-Type", "image/webp")
	return &convsdk.Response{StatusCode: http.StatusOK, Header: h, Body: []byte("RIFF....WEBP")}, nil
}
