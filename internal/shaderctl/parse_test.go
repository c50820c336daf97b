package shaderctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const technoChurch = `#pragma name "TechnoChurch"
#pragma TEControl.SPIN.Range(0.0, -1.0, 1.0)
#pragma TEControl.SIZE.Range(1.0, 0.1, 5.0)
#pragma TEControl.XPOS.Value(0.0)
#pragma TEControl.YPOS.Value(0.0)
#pragma TEControl.SPEED.Range(0.5, -1.0, 1.0)
#pragma TEControl.QUANTITY.Range(6.0, 1.0, 12.0)
#pragma TEControl.LEVELREACTIVITY.Range(0.2, 0.0, 1.0)
#pragma TEControl.FREQREACTIVITY.Range(0.2, 0.0, 1.0)
#pragma TEControl.WOW1.Range(0.0, 0.0, 1.0)
#pragma TEControl.WOW2.Range(0.0, 0.0, 1.0)
#pragma TEControl.WOWTRIGGER.Disable

void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    fragColor = vec4(1.0);
}
`

func names(ds []Declaration) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

func TestParseTechnoChurch(t *testing.T) {
	m := Parse(technoChurch)
	assert.Equal(t, "TechnoChurch", m.Name)
	assert.Equal(t, []string{
		"Spin", "Size", "Speed", "Quantity",
		"LevelReactivity", "FrequencyReactivity", "Wow1", "Wow2",
	}, names(m.Controls))
	assert.Empty(t, m.Warnings)

	require.Len(t, m.Fixed, 2)
	assert.Equal(t, TagXPos, m.Fixed[0].Tag)
	assert.Equal(t, TagYPos, m.Fixed[1].Tag)
	assert.Equal(t, []Tag{TagWowTrigger}, m.Disabled)

	size, ok := m.Control("Size")
	require.True(t, ok)
	assert.Equal(t, TagSize, size.Tag)
	assert.Equal(t, 1.0, size.Default)
	assert.Equal(t, 0.1, size.Min)
	assert.Equal(t, 5.0, size.Max)
	assert.False(t, m.Uses(TagXPos))
}

func TestParseIsDeterministic(t *testing.T) {
	src := technoChurch + "\nuniform float glow = .3 in {0., 1.};\n#iUniform vec2 drift = vec2(0.1, 0.2) in{-1.,1.}\n"
	a := Parse(src)
	b := Parse(src)
	assert.Equal(t, a, b)
}

func TestUniformRangeSpacing(t *testing.T) {
	tight := `uniform float iSpeed = 0.5 in{0.0, 2.0};
uniform float energy = .25 in{0., 1.};`
	loose := `uniform float iSpeed = 0.5 in {0.0, 2.0};
uniform float energy = .25   in   {  0. ,  1.  } ;`

	a, b := Parse(tight), Parse(loose)
	require.Len(t, a.Controls, 2)
	assert.Equal(t, a.Controls, b.Controls)
	assert.Empty(t, b.Warnings)

	assert.Equal(t, "Speed", a.Controls[0].Name)
	assert.Equal(t, TagSpeed, a.Controls[0].Tag)
	assert.Equal(t, "iSpeed", a.Controls[0].Source)
	assert.Equal(t, "energy", a.Controls[1].Name)
	assert.Equal(t, TagNone, a.Controls[1].Tag)
}

func TestUniformWithoutRangeIsConstant(t *testing.T) {
	m := Parse(`uniform float iTime;
uniform float glow = 0.4;
uniform int steps = 8 in {1, 16};
uniform float amount = 0.4 in {0.0, 1.0};`)
	assert.Equal(t, []string{"amount"}, names(m.Controls))
	_, ok := m.Control("glow")
	assert.False(t, ok)
	require.Len(t, m.Constants, 3)
	assert.Equal(t, "glow", m.Constants[1].Name)
	assert.Equal(t, "0.4", m.Constants[1].Init)
}

func TestMalformedLinesAreSkipped(t *testing.T) {
	m := Parse(`#pragma TEControl.SPEED.Range(fast, 0, 1)
uniform float bad = 0.5 in {0.0, ;
uniform float nope = abc in {0, 1};
#pragma TEControl.BOGUS.Range(0, 0, 1)
#pragma once
uniform float ok = 0.5 in {0, 1};
#pragma TEControl.SIZE.Range(NaN, 0.0, 1.0)
uniform float far = 0.5 in {0.0, Infinity};
uniform float neg = -Inf in {0.0, 1.0};`)
	assert.Equal(t, []string{"ok"}, names(m.Controls))
	require.Len(t, m.Warnings, 7)
	assert.ErrorIs(t, m.Warnings[0], ErrBadNumber)
	assert.Equal(t, 1, m.Warnings[0].Line)
	assert.ErrorIs(t, m.Warnings[1], ErrMalformedRange)
	assert.ErrorIs(t, m.Warnings[2], ErrBadNumber)
	assert.ErrorIs(t, m.Warnings[3], ErrUnknownTag)
	for _, w := range m.Warnings[4:] {
		assert.ErrorIs(t, w, ErrBadNumber, w.Text)
	}
	assert.Equal(t, []int{7, 8, 9}, []int{m.Warnings[4].Line, m.Warnings[5].Line, m.Warnings[6].Line})
	for _, d := range m.Controls {
		assert.True(t, d.Min <= d.Default && d.Default <= d.Max, d.Name)
	}
}

func TestRangeSuffixAfterNumberWithoutSpace(t *testing.T) {
	m := Parse(`uniform float tight = 0.5in{0,1};
uniform float within = 0.25;`)
	require.Len(t, m.Controls, 1)
	assert.Equal(t, "tight", m.Controls[0].Name)
	assert.Equal(t, 0.5, m.Controls[0].Default)
	assert.Equal(t, 1.0, m.Controls[0].Max)
	require.Len(t, m.Constants, 1)
	assert.Equal(t, "within", m.Constants[0].Name)
	assert.Empty(t, m.Warnings)
}

func TestEmptySource(t *testing.T) {
	m := Parse("")
	assert.Empty(t, m.Controls)
	assert.Empty(t, m.Warnings)
	assert.Equal(t, "", m.Name)
}

func TestVectorControlsExpand(t *testing.T) {
	m := Parse(`#iUniform vec3 tint = vec3(1.0, 0.5, 0.0) in {0., 1.}
uniform vec2 offset = 0.25 in {-1.0, 1.0};`)
	assert.Equal(t, []string{"tint.x", "tint.y", "tint.z", "offset.x", "offset.y"}, names(m.Controls))
	assert.Equal(t, 0.5, m.Controls[1].Default)
	assert.Equal(t, 1, m.Controls[1].Component)
	assert.Equal(t, 0.25, m.Controls[4].Default)

	bad := Parse(`uniform vec3 tint = vec2(1.0, 0.5) in {0., 1.};`)
	assert.Empty(t, bad.Controls)
	require.Len(t, bad.Warnings, 1)
	assert.ErrorIs(t, bad.Warnings[0], ErrComponents)
}

func TestRangeNormalisation(t *testing.T) {
	m := Parse(`uniform float w = 0.5 in {1.0, 0.0};
uniform float v = 3.0 in {0.0, 1.0};`)
	require.Len(t, m.Controls, 2)
	assert.Equal(t, 0.0, m.Controls[0].Min)
	assert.Equal(t, 1.0, m.Controls[0].Max)
	assert.Equal(t, 1.0, m.Controls[1].Default)
	require.Len(t, m.Warnings, 2)
	assert.ErrorIs(t, m.Warnings[0], ErrRangeReversed)
	assert.ErrorIs(t, m.Warnings[1], ErrDefaultClamped)
}

func TestMixedSyntaxKeepsLineOrderAndDropsDuplicateTags(t *testing.T) {
	m := Parse(`uniform float iSpin = 0.1 in {0.0, 1.0};
#pragma SPEED.Range(0.5, 0.0, 1.0)
uniform float iSpeed = 0.2 in {0.0, 1.0};
#pragma control.spin.range(0.0, 0.0, 1.0)`)
	assert.Equal(t, []string{"Spin", "Speed"}, names(m.Controls))
	assert.Equal(t, SyntaxUniform, m.Controls[0].Syntax)
	assert.Equal(t, SyntaxPragma, m.Controls[1].Syntax)
	require.Len(t, m.Warnings, 2)
	assert.ErrorIs(t, m.Warnings[0], ErrDuplicateTag)
	assert.Equal(t, 3, m.Warnings[0].Line)
	assert.Equal(t, 4, m.Warnings[1].Line)
}

func TestLookupTag(t *testing.T) {
	assert.Equal(t, TagSpin, LookupTag("iSpin"))
	assert.Equal(t, TagSpin, LookupTag("SPIN"))
	assert.Equal(t, TagSize, LookupTag("iScale"))
	assert.Equal(t, TagAngle, LookupTag("iRotationAngle"))
	assert.Equal(t, TagNone, LookupTag("tint"))
	assert.Len(t, Tags(), 13)
	assert.Equal(t, "WowTrigger", TagWowTrigger.String())
}
