// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package installer

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by the installer wraps exactly one
// of these; callers test with errors.Is.
var (
	ErrMissingTool          = errors.New("missing tool")
	ErrAlreadyInitialized   = errors.New("already initialized")
	ErrFetchFailure         = errors.New("fetch failed")
	ErrCompilerBuildFailure = errors.New("compiler build failed")
	ErrStdlibCompileFailure = errors.New("standard library compile failed")
	ErrArchiveFailure       = errors.New("archive failed")
	ErrRelocateFailure      = errors.New("interface relocation failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrStaging              = errors.New("staging directory")
)

// StageError reports a fatal failure of one bootstrap stage. Kind is one
// of the Err* sentinels; Tool names the external executable involved,
// when there is one.
type StageError struct {
	Kind error
	Tool string
	Msg  string
	Err  error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and
// errors.As.
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stageErrorf(kind error, cause error, format string, args ...any) error {
	return &StageError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func missingTool(tool string, cause error) error {
	return &StageError{
		Kind: ErrMissingTool,
		Tool: tool,
		Msg:  fmt.Sprintf("failed to find `%s`", tool),
		Err:  cause,
	}
}

// MissingToolName returns the tool named by a ErrMissingTool error, or
// "" when err is of another kind.
func MissingToolName(err error) string {
	var se *StageError
	if errors.As(err, &se) && se.Kind == ErrMissingTool {
		return se.Tool
	}
	return ""
}
