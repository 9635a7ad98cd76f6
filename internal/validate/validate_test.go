package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote_OverlongIsInvalidButTruncated(t *testing.T) {
	v := New(DefaultLimits())
	r := v.Note(strings.Repeat("a", DefaultMaxNote+50))

	assert.False(t, r.Valid)
	require.Len(t, r.Reasons, 1)
	assert.Contains(t, r.Reasons[0], "maximum length")
	assert.Equal(t, DefaultMaxNote, utf8.RuneCountInString(r.Value))
}

func TestNote_StripsMarkupAndControls(t *testing.T) {
	v := New(DefaultLimits())
	r := v.Note("check\x00 valve<script>alert(1)</script>\nline two <b>bold</b>")

	assert.True(t, r.Valid)
	assert.Empty(t, r.Reasons)
	assert.Equal(t, "check valve\nline two bold", r.Value)
}

func TestNote_ValueIsEscaped(t *testing.T) {
	v := New(DefaultLimits())
	r := v.Note("pressure < 3000 & rising, see &lt;script&gt;")
	assert.Equal(t, "pressure &lt; 3000 &amp; rising, see &lt;script&gt;", r.Value)
	assert.NotContains(t, r.Value, "<")
}

func TestNote_EmptyIsAllowed(t *testing.T) {
	r := New(DefaultLimits()).Note("   ")
	assert.True(t, r.Valid)
	assert.Equal(t, "", r.Value)
}

func TestTitle_RequiredAndSingleLine(t *testing.T) {
	v := New(DefaultLimits())

	r := v.Title("")
	assert.False(t, r.Valid)
	assert.Equal(t, []string{"title is required"}, r.Reasons)

	r = v.Title("  Tank\n\tVent  ")
	assert.True(t, r.Valid)
	assert.Equal(t, "Tank Vent", r.Value)
}

func TestQuery_PlainText(t *testing.T) {
	v := New(Limits{Note: 10, Title: 10, Query: 5})

	r := v.Query("Fuel & Vent")
	assert.False(t, r.Valid)
	assert.Equal(t, "Fuel ", r.Value)

	r = v.Query("Fuel")
	assert.True(t, r.Valid)
	assert.Equal(t, "Fuel", r.Value)
}

func TestLimits_Validate(t *testing.T) {
	l := DefaultLimits()
	assert.NoError(t, l.Validate())

	l.Query = 0
	assert.Error(t, l.Validate())
}
