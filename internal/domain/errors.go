package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrResize            = errors.New("resize error")
	ErrCompressionFailed = errors.New("compression failed")
	ErrPath              = errors.New("path error")
	ErrIO                = errors.New("io error")
)

// VariantError reports which variant of a run failed. Width is the target
// width (or the source width when no resize was requested). Path is empty
// when the failure happened before the output path was known.
type VariantError struct {
	Width int
	Path  string
	Err   error
}

func (e *VariantError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("variant width=%d: %v", e.Width, e.Err)
	}
	return fmt.Sprintf("variant width=%d path=%s: %v", e.Width, e.Path, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}
