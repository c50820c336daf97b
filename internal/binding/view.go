package binding

import (
	"sync"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaderctl"
)

type slot struct {
	ctl *Control
	tag shaderctl.Tag
}

// View is one shader's binding onto a Set. It owns the shader's per-tag range overrides and
// unused marks; the controls themselves stay shared.
type View struct {
	mu       sync.RWMutex
	set      *Set
	byName   map[string]slot
	pinned   map[shaderctl.Tag]float64
	ranges   map[shaderctl.Tag]Range
	unused   map[shaderctl.Tag]bool
	decls    map[shaderctl.Tag]shaderctl.Declaration
	tags     []shaderctl.Tag
	custom   []*Control
	consts   map[string]float64
	manName  string
	released bool
}

// Name is the shader's display name, if it declared one.
func (v *View) Name() string { return v.manName }

// Set returns the owning control set.
func (v *View) Set() *Set { return v.set }

// Custom returns this shader's dedicated controls in declaration order.
func (v *View) Custom() []*Control { return v.custom }

// Range returns the effective range this shader uses for a standardized tag.
func (v *View) Range(t shaderctl.Tag) (Range, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	r, ok := v.ranges[t]
	return r, ok
}

// OverrideRange changes the bounds this shader maps tag t into. The shared control is untouched.
func (v *View) OverrideRange(t shaderctl.Tag, lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	r := v.ranges[t]
	r.Min, r.Max = lo, hi
	r.Default = r.Clamp(r.Default)
	v.ranges[t] = r
}

// MarkUnused hides tag t for this shader: it reads back the declared default and stops counting
// as a user of the shared control.
func (v *View) MarkUnused(t shaderctl.Tag) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unused[t] {
		return
	}
	v.unused[t] = true
	if v.dropTag(t) && !v.released {
		v.set.use(t, -1)
	}
}

// MarkUsed reverses MarkUnused.
func (v *View) MarkUsed(t shaderctl.Tag) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.unused[t] {
		return
	}
	delete(v.unused, t)
	if _, declared := v.decls[t]; declared && !v.released {
		v.tags = append(v.tags, t)
		v.set.use(t, 1)
	}
}

func (v *View) dropTag(t shaderctl.Tag) bool {
	for i, x := range v.tags {
		if x == t {
			v.tags = append(v.tags[:i], v.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Unused reports whether tag t is hidden for this shader.
func (v *View) Unused(t shaderctl.Tag) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.unused[t]
}

// Tag returns the value of standardized tag t as this shader sees it: pinned values win, unused
// tags read their declared default, otherwise the shared normalized value is mapped into the
// shader's range. Undeclared tags read 0.
func (v *View) Tag(t shaderctl.Tag) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.tagLocked(t)
}

func (v *View) tagLocked(t shaderctl.Tag) float64 {
	if p, ok := v.pinned[t]; ok {
		return p
	}
	r, ok := v.ranges[t]
	if !ok {
		return 0
	}
	if v.unused[t] {
		return r.Default
	}
	s, ok := v.byName[t.String()]
	if !ok {
		return r.Default
	}
	return r.Lerp(s.ctl.Value())
}

// Value returns a control by declared name; standardized names go through Tag. Scalar constants
// read their declared value.
func (v *View) Value(name string) float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.byName[name]
	if !ok {
		return v.consts[name]
	}
	if s.tag.Standard() {
		return v.tagLocked(s.tag)
	}
	return s.ctl.Value()
}

// Snapshot captures every value this shader reads, for use during one frame.
func (v *View) Snapshot() Values {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := Values{named: make(map[string]float64, len(v.byName)+len(v.consts))}
	for name, c := range v.consts {
		out.named[name] = c
	}
	for _, t := range shaderctl.Tags() {
		out.std[t] = v.tagLocked(t)
	}
	for name, s := range v.byName {
		if s.tag.Standard() {
			continue
		}
		out.named[name] = s.ctl.Value()
	}
	return out
}

// Release detaches the view from the set's usage counts. Custom controls remain registered.
func (v *View) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return
	}
	v.released = true
	for _, t := range v.tags {
		v.set.use(t, -1)
	}
}

// Values is an immutable per-frame snapshot of a shader's control values.
type Values struct {
	std   [shaderctl.NumTags]float64
	named map[string]float64
}

// Tag returns a standardized value.
func (vs Values) Tag(t shaderctl.Tag) float64 {
	if t < 0 || int(t) >= len(vs.std) {
		return 0
	}
	return vs.std[t]
}

// Get returns a custom value by declared name (vector components as name.x ...).
func (vs Values) Get(name string) float64 { return vs.named[name] }

// Has reports whether name is declared.
func (vs Values) Has(name string) bool {
	_, ok := vs.named[name]
	return ok
}

// Fixed builds a snapshot from literal values; useful for tests and previews.
func Fixed(std map[shaderctl.Tag]float64, named map[string]float64) Values {
	out := Values{named: map[string]float64{}}
	for t, v := range std {
		if t >= 0 && int(t) < len(out.std) {
			out.std[t] = v
		}
	}
	for k, v := range named {
		out.named[k] = v
	}
	return out
}
