package binding

import (
	"errors"
	"fmt"
	"sync"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

// ErrConflict is recorded when a custom control name collides with an existing one and is renamed.
var ErrConflict = errors.New("control name conflict")

// Set holds every control of one pattern instance: the shared standardized controls,
// keyed by tag, plus dedicated custom controls.
type Set struct {
	mu        sync.RWMutex
	std       map[shaderctl.Tag]*Control
	custom    map[string]*Control
	order     []*Control
	users     map[shaderctl.Tag]int
	conflicts []error
	listeners []func(*Control)
}

func NewSet() *Set {
	return &Set{
		std:    map[shaderctl.Tag]*Control{},
		custom: map[string]*Control{},
		users:  map[shaderctl.Tag]int{},
	}
}

// Standard returns the shared control for tag, creating it on first use.
func (s *Set) Standard(tag shaderctl.Tag) *Control {
	if !tag.Standard() {
		return nil
	}
	s.mu.RLock()
	c := s.std[tag]
	s.mu.RUnlock()
	if c != nil {
		return c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.standardLocked(tag, unit.Default)
}

func (s *Set) standardLocked(tag shaderctl.Tag, initial float64) *Control {
	if c := s.std[tag]; c != nil {
		return c
	}
	r := unit
	r.Default = initial
	c := newControl(s, tag.String(), tag, r)
	s.std[tag] = c
	s.order = append(s.order, c)
	return c
}

// Lookup returns the standardized control for tag if one exists.
func (s *Set) Lookup(tag shaderctl.Tag) (*Control, bool) {
	if !tag.Standard() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.std[tag]
	return c, c != nil
}

// Custom returns the dedicated control exposed under label.
func (s *Set) Custom(label string) (*Control, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.custom[label]
	return c, ok
}

// ByLabel finds any control by its exposed label.
func (s *Set) ByLabel(label string) (*Control, bool) {
	if t := shaderctl.LookupTag(label); t.Standard() {
		if c, ok := s.Lookup(t); ok {
			return c, true
		}
	}
	return s.Custom(label)
}

// addCustom registers a dedicated control, renaming it name_2, name_3, ... on collision.
func (s *Set) addCustom(name string, r Range) *Control {
	s.mu.Lock()
	defer s.mu.Unlock()
	label := name
	for n := 2; s.taken(label); n++ {
		label = fmt.Sprintf("%s_%d", name, n)
	}
	if label != name {
		s.conflicts = append(s.conflicts, fmt.Errorf("%w: %q exposed as %q", ErrConflict, name, label))
	}
	c := newControl(s, label, shaderctl.TagNone, r)
	s.custom[label] = c
	s.order = append(s.order, c)
	return c
}

func (s *Set) taken(label string) bool {
	if _, ok := s.custom[label]; ok {
		return true
	}
	for _, c := range s.std {
		if c.Label == label {
			return true
		}
	}
	return false
}

// Exposed lists the controls the host should show, in creation order. Standardized controls that
// no bound shader uses are hidden but keep their value.
func (s *Set) Exposed() []*Control {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Control, 0, len(s.order))
	for _, c := range s.order {
		if c.Standard() && s.users[c.Tag] <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Conflicts returns the renames performed so far.
func (s *Set) Conflicts() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]error(nil), s.conflicts...)
}

// OnChange registers fn to be called after any control in the set changes value.
func (s *Set) OnChange(fn func(*Control)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Set) notify(c *Control) {
	s.mu.RLock()
	ls := s.listeners
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(c)
	}
}

func (s *Set) use(tag shaderctl.Tag, delta int) {
	s.mu.Lock()
	s.users[tag] += delta
	s.mu.Unlock()
}

// Bind attaches a parsed shader to the set and returns its view. Standardized declarations share
// the set's control for their tag; custom declarations get dedicated controls. A name repeated
// within one manifest binds only its first declaration.
func (s *Set) Bind(m *shaderctl.Manifest) *View {
	v := &View{
		set:     s,
		byName:  map[string]slot{},
		pinned:  map[shaderctl.Tag]float64{},
		ranges:  map[shaderctl.Tag]Range{},
		unused:  map[shaderctl.Tag]bool{},
		decls:   map[shaderctl.Tag]shaderctl.Declaration{},
		consts:  map[string]float64{},
		manName: m.Name,
	}
	for _, k := range m.Constants {
		if c, ok := k.Scalar(); ok {
			v.consts[k.Name] = c
		}
	}
	for _, p := range m.Fixed {
		v.pinned[p.Tag] = p.Value
	}
	for _, t := range m.Disabled {
		v.unused[t] = true
	}
	for _, d := range m.Controls {
		r := Range{Min: d.Min, Max: d.Max, Default: d.Default}
		if d.Tag.Standard() {
			s.mu.Lock()
			c := s.standardLocked(d.Tag, r.Normalize(d.Default))
			s.mu.Unlock()
			v.ranges[d.Tag] = r
			v.decls[d.Tag] = d
			v.byName[d.Name] = slot{ctl: c, tag: d.Tag}
			if !v.unused[d.Tag] {
				v.tags = append(v.tags, d.Tag)
				s.use(d.Tag, 1)
			}
			continue
		}
		if _, dup := v.byName[d.Name]; dup {
			continue
		}
		c := s.addCustom(d.Name, r)
		v.byName[d.Name] = slot{ctl: c}
		v.custom = append(v.custom, c)
	}
	return v
}
