// Package shaderctl extracts user-adjustable controls from shader source text.
//
// Two declaration styles are recognised and may be mixed in one source:
//
//	#pragma name "TechnoChurch"
//	#pragma TEControl.SPEED.Range(0.5, -1.0, 1.0)
//	#pragma TEControl.XPOS.Value(0.0)
//	#pragma TEControl.WOWTRIGGER.Disable
//
//	uniform float iSpin = 0.25 in {0.0, 1.0};
//	#iUniform vec3 tint = vec3(1.0, 0.5, 0.0) in{0., 1.}
//
// Pragma lines only address standardized controls. Uniform lines with a range suffix become
// controls; without one they are constants. Parsing is pure: identical input yields identical output.
package shaderctl

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Syntax records which declaration style produced a control.
type Syntax int

const (
	SyntaxPragma Syntax = iota
	SyntaxUniform
)

// Declaration is one user-adjustable control. Min <= Default <= Max always holds.
type Declaration struct {
	// Name is the canonical tag name for standardized controls, the declared name otherwise.
	// Vector components are named base.x, base.y, base.z, base.w.
	Name      string
	Tag       Tag
	Source    string // name as spelled in the source
	Component int    // vector component index, 0 for scalars
	Default   float64
	Min       float64
	Max       float64
	Syntax    Syntax
	Line      int
}

// Pin is a standardized control forced to a fixed value by a .Value pragma.
type Pin struct {
	Tag   Tag
	Value float64
	Line  int
}

// Constant is a uniform declared without a range suffix.
type Constant struct {
	Name string
	Type string
	Init string
	Line int
}

// Scalar returns the constant's value when it is a float or int literal.
func (c Constant) Scalar() (float64, bool) {
	if c.Type != "float" && c.Type != "int" {
		return 0, false
	}
	v, err := parseNumber(c.Init)
	return v, err == nil
}

// Manifest is the full result of parsing one shader source.
type Manifest struct {
	Name      string
	Controls  []Declaration
	Fixed     []Pin
	Disabled  []Tag
	Constants []Constant
	Warnings  []*ParseError
}

// Control returns the declaration with the given name.
func (m *Manifest) Control(name string) (Declaration, bool) {
	for _, d := range m.Controls {
		if d.Name == name {
			return d, true
		}
	}
	return Declaration{}, false
}

// Uses reports whether the shader declares the standardized tag as a control.
func (m *Manifest) Uses(t Tag) bool {
	for _, d := range m.Controls {
		if d.Tag == t {
			return true
		}
	}
	return false
}

var (
	pragmaName    = regexp.MustCompile(`^\s*#pragma\s+name\s+"?([^"]*?)"?\s*$`)
	pragmaControl = regexp.MustCompile(`(?i)^\s*#pragma\s+(?:TEControl\.|control\.)?([A-Za-z_]\w*)\.(Range|Value|Disable)\b\s*(\(.*)?$`)
	uniformHead   = regexp.MustCompile(`^\s*(?:#iUniform|uniform)\s+([A-Za-z_]\w*)\s+([A-Za-z_]\w*)\s*(.*)$`)
	rangeStart    = regexp.MustCompile(`(?:^|[^A-Za-z_])(in\s*\{)`)
	rangeTail     = regexp.MustCompile(`\bin\s*\{([^{}]*)\}\s*$`)
	vecInit       = regexp.MustCompile(`^vec([234])\s*\((.*)\)$`)
)

// line-tagged output of one stage; merged by line number afterwards
type item struct {
	line  int
	decls []Declaration
	pin   *Pin
	off   Tag
	konst *Constant
	name  string
}

// Parse scans src and returns its control manifest. Malformed declarations are skipped and
// reported in Manifest.Warnings; Parse never fails.
func Parse(src string) *Manifest {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	var warns []*ParseError

	items := parsePragmas(lines, &warns)
	items = append(items, parseUniforms(lines, &warns)...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].line < items[j].line })

	m := &Manifest{}
	seen := map[Tag]bool{}
	seenName := map[string]bool{}
	for _, it := range items {
		switch {
		case it.name != "":
			if m.Name == "" {
				m.Name = it.name
			}
		case it.pin != nil:
			m.Fixed = append(m.Fixed, *it.pin)
		case it.off != TagNone:
			m.Disabled = append(m.Disabled, it.off)
		case it.konst != nil:
			m.Constants = append(m.Constants, *it.konst)
		default:
			for _, d := range it.decls {
				if d.Tag.Standard() {
					if seen[d.Tag] {
						warns = append(warns, &ParseError{Line: d.Line, Text: strings.TrimSpace(lines[d.Line-1]), Err: ErrDuplicateTag})
						continue
					}
					seen[d.Tag] = true
				} else {
					if seenName[d.Name] {
						if d.Component == 0 {
							warns = append(warns, &ParseError{Line: d.Line, Text: strings.TrimSpace(lines[d.Line-1]), Err: ErrDuplicateName})
						}
						continue
					}
					seenName[d.Name] = true
				}
				m.Controls = append(m.Controls, d)
			}
		}
	}
	sort.SliceStable(warns, func(i, j int) bool { return warns[i].Line < warns[j].Line })
	m.Warnings = warns
	return m
}

func parsePragmas(lines []string, warns *[]*ParseError) []item {
	var out []item
	for i, raw := range lines {
		ln := i + 1
		text := stripComment(raw)
		if mm := pragmaName.FindStringSubmatch(text); mm != nil {
			out = append(out, item{line: ln, name: strings.TrimSpace(mm[1])})
			continue
		}
		mm := pragmaControl.FindStringSubmatch(text)
		if mm == nil {
			continue
		}
		fail := func(err error) {
			*warns = append(*warns, &ParseError{Line: ln, Text: strings.TrimSpace(raw), Err: err})
		}
		tag := LookupTag(mm[1])
		if !tag.Standard() {
			fail(ErrUnknownTag)
			continue
		}
		method := strings.ToLower(mm[2])
		if method == "disable" {
			out = append(out, item{line: ln, off: tag})
			continue
		}
		args, ok := parenArgs(mm[3])
		if !ok {
			fail(ErrMalformedRange)
			continue
		}
		nums, err := parseNumbers(args)
		if err != nil {
			fail(err)
			continue
		}
		switch method {
		case "value":
			if len(nums) != 1 {
				fail(ErrMalformedRange)
				continue
			}
			out = append(out, item{line: ln, pin: &Pin{Tag: tag, Value: nums[0], Line: ln}})
		case "range":
			if len(nums) != 3 {
				fail(ErrMalformedRange)
				continue
			}
			d := Declaration{
				Name:    tag.String(),
				Tag:     tag,
				Source:  mm[1],
				Default: nums[0],
				Min:     nums[1],
				Max:     nums[2],
				Syntax:  SyntaxPragma,
				Line:    ln,
			}
			if err := normalize(&d); err != nil {
				fail(err)
			}
			out = append(out, item{line: ln, decls: []Declaration{d}})
		}
	}
	return out
}

func parseUniforms(lines []string, warns *[]*ParseError) []item {
	var out []item
	for i, raw := range lines {
		ln := i + 1
		mm := uniformHead.FindStringSubmatch(stripComment(raw))
		if mm == nil {
			continue
		}
		fail := func(err error) {
			*warns = append(*warns, &ParseError{Line: ln, Text: strings.TrimSpace(raw), Err: err})
		}
		typ, name := mm[1], mm[2]
		rest := strings.TrimSpace(mm[3])
		rest = strings.TrimSpace(strings.TrimSuffix(rest, ";"))

		var rng string
		hasRange := false
		if loc := rangeStart.FindStringSubmatchIndex(rest); loc != nil {
			at := loc[2]
			tail := rangeTail.FindStringSubmatch(rest[at:])
			if tail == nil {
				fail(ErrMalformedRange)
				continue
			}
			rng = tail[1]
			hasRange = true
			rest = strings.TrimSpace(rest[:at])
		}
		initial := strings.TrimSpace(strings.TrimPrefix(rest, "="))

		n := components(typ)
		if !hasRange || n == 0 {
			out = append(out, item{line: ln, konst: &Constant{Name: name, Type: typ, Init: initial, Line: ln}})
			continue
		}

		bounds, err := parseNumbers(splitArgs(rng))
		if err != nil {
			fail(err)
			continue
		}
		if len(bounds) != 2 {
			fail(ErrMalformedRange)
			continue
		}
		defs, err := parseInit(initial, n, bounds[0])
		if err != nil {
			fail(err)
			continue
		}

		tag := TagNone
		if n == 1 {
			tag = LookupTag(name)
		}
		decls := make([]Declaration, 0, n)
		for c := 0; c < n; c++ {
			d := Declaration{
				Name:      name,
				Tag:       tag,
				Source:    name,
				Component: c,
				Default:   defs[c],
				Min:       bounds[0],
				Max:       bounds[1],
				Syntax:    SyntaxUniform,
				Line:      ln,
			}
			if tag.Standard() {
				d.Name = tag.String()
			}
			if n > 1 {
				d.Name = name + "." + string("xyzw"[c])
			}
			if err := normalize(&d); err != nil && c == 0 {
				fail(err)
			}
			decls = append(decls, d)
		}
		out = append(out, item{line: ln, decls: decls})
	}
	return out
}

// components returns how many float controls a GLSL type carries; 0 means it can't be a control.
func components(typ string) int {
	switch typ {
	case "float":
		return 1
	case "vec2":
		return 2
	case "vec3":
		return 3
	case "vec4":
		return 4
	}
	return 0
}

func parseInit(expr string, n int, fallback float64) ([]float64, error) {
	out := make([]float64, n)
	if expr == "" {
		for i := range out {
			out[i] = fallback
		}
		return out, nil
	}
	var vals []float64
	if mm := vecInit.FindStringSubmatch(expr); mm != nil {
		if want, _ := strconv.Atoi(mm[1]); want != n {
			return nil, ErrComponents
		}
		v, err := parseNumbers(splitArgs(mm[2]))
		if err != nil {
			return nil, err
		}
		vals = v
	} else {
		v, err := parseNumber(expr)
		if err != nil {
			return nil, err
		}
		vals = []float64{v}
	}
	switch len(vals) {
	case 1:
		for i := range out {
			out[i] = vals[0]
		}
	case n:
		copy(out, vals)
	default:
		return nil, ErrComponents
	}
	return out, nil
}

// normalize swaps a reversed range and clamps the default into it.
func normalize(d *Declaration) error {
	var err error
	if d.Min > d.Max {
		d.Min, d.Max = d.Max, d.Min
		err = ErrRangeReversed
	}
	if d.Default < d.Min {
		d.Default = d.Min
		if err == nil {
			err = ErrDefaultClamped
		}
	} else if d.Default > d.Max {
		d.Default = d.Max
		if err == nil {
			err = ErrDefaultClamped
		}
	}
	return err
}

// parenArgs extracts the comma separated text between a leading '(' and its closing ')'.
func parenArgs(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") {
		return nil, false
	}
	end := strings.IndexByte(s, ')')
	if end < 0 || strings.TrimSpace(s[end+1:]) != "" {
		return nil, false
	}
	return splitArgs(s[1:end]), true
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseNumbers(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := parseNumber(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseNumber accepts finite GLSL float literals: 1., .5, 2.0f, -1e-3.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "fF")
	if s == "" {
		return 0, ErrBadNumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrBadNumber
	}
	return v, nil
}

func stripComment(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		return s[:i]
	}
	return s
}
