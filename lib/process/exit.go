// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ExitCoder is implemented by errors that select their own exit status.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode is 0 for nil, the status chosen by the first ExitCoder in
// err's tree, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Report writes "name: err" to w and returns err's exit status.
func Report(w io.Writer, name string, err error) int {
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", name, err)
	}
	return ExitCode(err)
}

// Exit reports err on stderr and exits with its status. It returns
// without exiting when err is nil.
func Exit(name string, err error) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, name, err))
}
