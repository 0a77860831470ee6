// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_PlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Error(errors.New("failed to find `git`"))
	assert.Equal(t, "error: failed to find `git`\n", buf.String())
}

func TestSuccessAndPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewWithColor(&buf, false)
	r.Success("Rois compiler successfully installed")
	r.Plain("wrote %s", "Makefile")
	assert.Equal(t, "Rois compiler successfully installed\nwrote Makefile\n", buf.String())
}

func TestError_Colored(t *testing.T) {
	var buf bytes.Buffer
	NewWithColor(&buf, true).Error(errors.New("boom"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b["), "expected an ANSI escape, got %q", out)
	assert.True(t, strings.HasSuffix(out, ": boom\n"))
	assert.Contains(t, out, "error")
}
