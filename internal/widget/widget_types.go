package widget

import (
	"context"
	"io"

	"github.com/webtoolkit/convkit/internal/blobref"
)

// State of an upload widget.
//
//	empty -> staged -> submitting -> done | failed
//
// done and failed go back to staged or empty on the next selection.
type State int

const (
	StateEmpty State = iota
	StateStaged
	StateSubmitting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateStaged:
		return "staged"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Candidate is a file offered by the user, not yet validated.
type Candidate struct {
	Name     string
	Size     int64
	MIMEType string
	Open     func() (io.ReadCloser, error)
}

// PendingFile is a validated, staged file. ID is unique within one widget.
type PendingFile struct {
	ID uint64
	Candidate
}

// SubmissionResult is the outcome of one round trip. Exactly one of Ref and
// Error is set.
type SubmissionResult struct {
	Success  bool
	Ref      *blobref.Ref
	Error    string
	FileName string
	Status   string
}

// Output is what a local transform produces instead of a server reply.
type Output struct {
	Data     []byte
	MIMEType string
	FileName string
	Status   string
}

// LocalFunc runs a transform in-process. Returning ErrUseServer hands the
// submission over to the configured endpoint.
type LocalFunc func(ctx context.Context, files []PendingFile, params map[string]string) (*Output, error)
