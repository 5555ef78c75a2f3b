package dropper

import (
	"errors"
	"fmt"
)

// Status is the outcome of synchronizing one archive.
type Status string

const (
	StatusUpdated Status = "UPDATED"
	StatusPartial Status = "PARTIAL"
	StatusSkipped Status = "SKIPPED"
	StatusFailed  Status = "FAILED"
	StatusDryRun  Status = "DRY_RUN"
)

// SkipReason explains a no-op result. Skips are not errors.
type SkipReason string

const (
	ReasonNone            SkipReason = ""
	ReasonNoManifest      SkipReason = "NO_MANIFEST"
	ReasonEmptyIdentifier SkipReason = "EMPTY_IDENTIFIER"
	ReasonNoMatch         SkipReason = "NO_MATCH"
)

var (
	ErrArchiveOpenFailed   = errors.New("archive open failed")
	ErrArchiveInsideTarget = errors.New("archive is stored inside the directory it would replace")
)

// DirError records why one matched directory (or root) could not be
// processed.
type DirError struct {
	Dir string
	Err error
}

func (e DirError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dir, e.Err)
}

func (e DirError) Unwrap() error { return e.Err }

// Result describes what Sync did with one archive.
type Result struct {
	Archive string
	Roots   []string
	Code    string
	Status  Status
	Reason  SkipReason

	// Matched lists every directory selected for replacement, Updated the
	// ones that were fully replaced.
	Matched  []string
	Updated  []string
	Failures []DirError

	BytesWritten int64

	// Err is set when the archive itself could not be used.
	Err error
}

// OK reports whether the archive was processed without any recorded failure.
func (r *Result) OK() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Describe returns a one line human readable summary.
func (r *Result) Describe() string {
	switch r.Status {
	case StatusSkipped:
		switch r.Reason {
		case ReasonNoManifest:
			return "no form.json in archive, skipped"
		case ReasonEmptyIdentifier:
			return "'Code' in form.json is empty, skipped"
		case ReasonNoMatch:
			return fmt.Sprintf("no form.json with Code='%s' found", r.Code)
		}
		return "skipped"
	case StatusFailed:
		if r.Err != nil {
			return r.Err.Error()
		}
		if len(r.Matched) == 0 && len(r.Failures) > 0 {
			return r.Failures[0].Error()
		}
		return fmt.Sprintf("%d of %d directories failed", len(r.Failures), len(r.Matched))
	case StatusPartial:
		return fmt.Sprintf("%d updated, %d failed", len(r.Updated), len(r.Failures))
	case StatusDryRun:
		return fmt.Sprintf("would replace %d directories", len(r.Matched))
	}
	return fmt.Sprintf("%d directories updated", len(r.Updated))
}

func (r *Result) skip(reason SkipReason) *Result {
	r.Status = StatusSkipped
	r.Reason = reason
	return r
}

func (r *Result) fail(err error) *Result {
	r.Status = StatusFailed
	r.Err = err
	return r
}

// settle derives the final status from the per-directory outcomes.
func (r *Result) settle() *Result {
	switch {
	case len(r.Failures) == 0:
		r.Status = StatusUpdated
	case len(r.Updated) == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
	return r
}
