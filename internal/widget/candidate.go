package widget

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/webtoolkit/convkit/internal/utils"
	"golang.org/x/sync/errgroup"
)

const candidateLoaders = 4

// CandidateFromPath stats and sniffs a local file. The file is opened again
// only when the submission reads it.
func CandidateFromPath(path string) (*Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("candidate %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("candidate %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("candidate %q: is a directory", path)
	}

	return &Candidate{
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: utils.DetectContentType(path, f),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// CandidateFromBytes wraps in-memory data, typed by sniffing.
func CandidateFromBytes(name string, data []byte) *Candidate {
	return &Candidate{
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: utils.DetectContentType(name, bytes.NewReader(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// CandidatesFromPaths loads candidates concurrently and returns them in the
// order of paths.
func CandidatesFromPaths(ctx context.Context, paths []string) ([]*Candidate, error) {
	out := make([]*Candidate, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(candidateLoaders)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := CandidateFromPath(p)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
