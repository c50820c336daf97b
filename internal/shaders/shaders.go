// Package shaders holds the built-in shader programs. Each program pairs control declarations
// (pragma or uniform syntax) with a Go fragment function reading them back by name or tag.
package shaders

import (
	"fmt"
	"strings"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/render"
)

// Kind identifies one built-in program.
type Kind int

const (
	TechnoChurch Kind = iota
	Plasma
	Rings
	Stripes
	kindCount
)

var kindNames = [...]string{
	TechnoChurch: "technochurch",
	Plasma:       "plasma",
	Rings:        "rings",
	Stripes:      "stripes",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every program in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind looks a program up by name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shader %q", s)
}

// Program is a shader's control source plus its evaluation function.
type Program struct {
	Kind   Kind
	Source string
	Frag   render.FragmentFunc
}

// Program returns the built-in program for k.
func (k Kind) Program() (Program, error) {
	switch k {
	case TechnoChurch:
		return Program{Kind: k, Source: technoChurchSource, Frag: technoChurch}, nil
	case Plasma:
		return Program{Kind: k, Source: plasmaSource, Frag: plasma}, nil
	case Rings:
		return Program{Kind: k, Source: ringsSource, Frag: rings}, nil
	case Stripes:
		return Program{Kind: k, Source: stripesSource, Frag: stripes}, nil
	}
	return Program{}, fmt.Errorf("unknown shader %s", k)
}
