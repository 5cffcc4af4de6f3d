// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := map[int]string{
		-5:  "0:00",
		0:   "0:00",
		1:   "0:01",
		45:  "0:45",
		59:  "0:59",
		60:  "1:00",
		125: "2:05",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCountdown(in), "seconds=%d", in)
	}
}

func TestFormatIdle(t *testing.T) {
	assert.Equal(t, "0s", FormatIdle(-time.Second))
	assert.Equal(t, "42s", FormatIdle(42*time.Second+300*time.Millisecond))
	assert.Equal(t, "4m12s", FormatIdle(4*time.Minute+12*time.Second))
	assert.Equal(t, "2h05m", FormatIdle(2*time.Hour+5*time.Minute+30*time.Second))
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", TruncateWidth("Ada Lovelace", 20))
	assert.Equal(t, "", TruncateWidth("Ada", 0))

	got := TruncateWidth("Ada Lovelace", 6)
	assert.LessOrEqual(t, runewidth.StringWidth(got), 6)
	assert.Equal(t, "…", string([]rune(got)[len([]rune(got))-1:]))

	wide := TruncateWidth("学生学生学生", 5)
	assert.LessOrEqual(t, runewidth.StringWidth(wide), 5)
}

func TestPadWidth(t *testing.T) {
	assert.Equal(t, "ab   ", PadWidth("ab", 5))
	assert.Equal(t, 6, runewidth.StringWidth(PadWidth("学生", 6)))
}
