// Package show plays a timeline of pattern clips with control automation and crossfades.
package show

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Keyframe is a value at time T (seconds into the clip). Ease applies to the segment that starts
// here: "linear", "smooth" or "cubic".
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"`
}

// Envelope is a list of keyframes sorted by T.
type Envelope []Keyframe

// Clip plays one pattern for DurationS and optionally crossfades into the next clip over its last
// XFadeS seconds.
type Clip struct {
	Name      string              `yaml:"name"`
	Pattern   string              `yaml:"pattern"`
	DurationS float64             `yaml:"duration_s"`
	XFadeS    float64             `yaml:"xfade_s,omitempty"`
	Controls  map[string]Envelope `yaml:"controls,omitempty"`
}

// Program is a full show.
type Program struct {
	Version string `yaml:"version"`
	Loop    bool   `yaml:"loop,omitempty"`
	Clips   []Clip `yaml:"clips"`
}

var ErrEmpty = errors.New("program has no clips")

// Parse decodes a YAML program, sorts envelope keys and validates it.
func Parse(data []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse show: %w", err)
	}
	for _, c := range p.Clips {
		for _, env := range c.Controls {
			sort.SliceStable(env, func(i, j int) bool { return env[i].T < env[j].T })
		}
	}
	return p, p.Validate()
}

// Load reads and parses a program file.
func Load(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	return Parse(b)
}

// Validate checks clip timing and, when patterns is non-nil, that every clip names one of them.
func (p Program) Validate(patterns ...string) error {
	if len(p.Clips) == 0 {
		return ErrEmpty
	}
	known := map[string]bool{}
	for _, n := range patterns {
		known[n] = true
	}
	for i, c := range p.Clips {
		switch {
		case c.Pattern == "":
			return fmt.Errorf("clip %d: no pattern", i)
		case c.DurationS <= 0:
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Pattern)
		case c.XFadeS < 0 || c.XFadeS > c.DurationS:
			return fmt.Errorf("clip %d (%s): xfade %.2fs outside [0, %.2fs]", i, c.Pattern, c.XFadeS, c.DurationS)
		case len(patterns) > 0 && !known[c.Pattern]:
			return fmt.Errorf("clip %d: unknown pattern %q", i, c.Pattern)
		}
	}
	return nil
}

// Duration is the sum of clip durations in seconds.
func (p Program) Duration() float64 {
	total := 0.0
	for _, c := range p.Clips {
		total += c.DurationS
	}
	return total
}

func clamp01(x float64) float64 { return math.Max(0, math.Min(1, x)) }

// smootherstep: 6x^5 - 15x^4 + 10x^3
func smootherstep(x float64) float64 { return x * x * x * (x*(x*6-15) + 10) }

func ease(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		return x * x * (3 - 2*x)
	case "cubic":
		return smootherstep(x)
	default:
		return x
	}
}

// Eval interpolates the envelope at t seconds. Before the first key and after the last the
// value holds; an empty envelope is 0.
func (e Envelope) Eval(t float64) float64 {
	n := len(e)
	switch {
	case n == 0:
		return 0
	case t <= e[0].T:
		return e[0].V
	case t >= e[n-1].T:
		return e[n-1].V
	}
	i := sort.Search(n, func(i int) bool { return e[i].T > t }) - 1
	a, b := e[i], e[i+1]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := ease(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}
