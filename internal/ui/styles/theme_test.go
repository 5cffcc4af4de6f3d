// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"dark", ModeDark},
		{" LIGHT ", ModeLight},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"neon", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMode(tt.in))
		})
	}
}

func TestNewThemeForPinnedModes(t *testing.T) {
	assert.True(t, NewThemeFor(ModeDark).IsDark)
	assert.False(t, NewThemeFor(ModeLight).IsDark)
}

func TestThemeRendersText(t *testing.T) {
	th := NewThemeFor(ModeDark)
	assert.Contains(t, th.Countdown.Render("0:42"), "0:42")
	assert.Contains(t, th.ButtonActive.Render("Continue Session"), "Continue Session")
}

func TestRenderHelpersCarryMarkers(t *testing.T) {
	assert.True(t, strings.Contains(RenderSuccess("saved"), "[OK] saved"))
	assert.True(t, strings.Contains(RenderError("failed"), "[X] failed"))
	assert.True(t, strings.Contains(RenderWarning("soon"), "[!] soon"))
	assert.True(t, strings.Contains(RenderInfo("note"), "[i] note"))
}
