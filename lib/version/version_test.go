// Copyright 2026 The Pianobot Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoIncludesInjectedValues(t *testing.T) {
	defer func(commit, built string) { GitCommit, BuildTime = commit, built }(GitCommit, BuildTime)
	GitCommit, BuildTime = "abc1234", "2026-01-01T00:00:00Z"

	info := Info()
	for _, want := range []string{Version, "abc1234", "2026-01-01T00:00:00Z"} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() = %q, missing %q", info, want)
		}
	}
	if !strings.HasPrefix(Full(), info) {
		t.Errorf("Full() does not start with Info(): %q", Full())
	}
}
