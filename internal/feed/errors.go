package feed

import (
	"errors"
	"fmt"

	"github.com/pders01/hackers/internal/hn"
)

var (
	// ErrFetchFailed is reported when the post provider fails or returns
	// unusable data. The current posts are left untouched.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrOutOfRange marks a selection or preview index that does not address
	// a loaded post. Hosts only hand out indices of rendered rows, so this is
	// a wiring bug rather than a runtime condition.
	ErrOutOfRange = errors.New("index out of range")

	// ErrNoPreview is returned by CommitPreview when nothing is being previewed.
	ErrNoPreview = fmt.Errorf("%w: no post is being previewed", ErrOutOfRange)
)

type FetchError struct {
	Category hn.Category
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading %s posts: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("post index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrOutOfRange }
