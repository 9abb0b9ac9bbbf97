package save

import (
	"errors"
	"fmt"
)

// Kind classifies a persistence failure.
type Kind int

const (
	KindIO Kind = iota
	KindNotFound
	KindEmpty
	KindCorrupt
	KindInvalid
	KindPermission
	KindDirectory
	KindNotAllowed
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindEmpty:
		return "empty"
	case KindCorrupt:
		return "corrupt"
	case KindInvalid:
		return "invalid"
	case KindPermission:
		return "permission"
	case KindDirectory:
		return "directory"
	case KindNotAllowed:
		return "not_allowed"
	case KindNoData:
		return "no_data"
	default:
		return "io"
	}
}

// Sentinels matched by errors.Is against *Error.
var (
	ErrNotFound   = errors.New("save file not found")
	ErrCorrupt    = errors.New("save file corrupted")
	ErrInvalid    = errors.New("save data invalid")
	ErrPermission = errors.New("save file permission denied")
	ErrNotAllowed = errors.New("saving not allowed")
)

// Error is returned by every failing Service operation. Message is the
// human-readable text also published as event.SaveLoadError.
type Error struct {
	Op      string
	Kind    Kind
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by kind. Empty files count as corrupt.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrCorrupt:
		return e.Kind == KindCorrupt || e.Kind == KindEmpty
	case ErrInvalid:
		return e.Kind == KindInvalid || e.Kind == KindNoData
	case ErrPermission:
		return e.Kind == KindPermission
	case ErrNotAllowed:
		return e.Kind == KindNotAllowed
	}
	return false
}

// KindOf returns the Kind of err, or KindIO if err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindIO
}
