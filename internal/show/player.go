package show

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State enumerates player states.
type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

// Hooks are the engine entry points a player drives.
type Hooks struct {
	// SetPattern switches immediately.
	SetPattern func(name string) error
	// SetControl writes a control on the active pattern.
	SetControl func(label string, v float64) error
	// ArmNext prepares the crossfade target.
	ArmNext func(name string) error
	// SetCrossfade mixes active and armed, 0..1; 1 completes the fade.
	SetCrossfade func(alpha float64)
}

// Player owns a Program timeline. All methods are safe for concurrent use; Tick is typically
// registered as an engine ticker.
type Player struct {
	mu    sync.Mutex
	state State
	prog  Program
	nowS  float64
	idx   int

	armed     bool
	lastAlpha float64

	hooks  Hooks
	log    zerolog.Logger
	warned map[string]bool
}

func NewPlayer(h Hooks, log zerolog.Logger) *Player {
	return &Player{state: Idle, hooks: h, log: log, warned: map[string]bool{}}
}

// Load replaces the program and resets to Idle.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return ErrEmpty
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prog = prog
	p.state = Idle
	p.reset()
	p.warned = map[string]bool{}
	return nil
}

func (p *Player) reset() {
	p.nowS = 0
	p.idx = 0
	p.armed = false
	p.lastAlpha = 0
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the clip index and program time in seconds.
func (p *Player) Position() (int, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx, p.nowS
}

// Start moves to Running and selects the current clip's pattern.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.state = Running
	p.enter(p.idx)
	p.log.Info().Str("clip", p.prog.Clips[p.idx].Name).Msg("show started")
}

func (p *Player) Pause() {
	p.mu.Lock()
	if p.state == Running {
		p.state = Paused
	}
	p.mu.Unlock()
}

func (p *Player) Resume() {
	p.mu.Lock()
	if p.state == Paused {
		p.state = Running
	}
	p.mu.Unlock()
}

// Stop rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Idle
	p.reset()
	p.crossfade(0)
}

// Seek jumps to program time t, clamped into [0, duration).
func (p *Player) Seek(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prog.Clips) == 0 {
		return
	}
	t = math.Max(0, t)
	if total := p.prog.Duration(); t >= total {
		t = math.Nextafter(total, -1)
	}
	acc, idx := 0.0, 0
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.nowS = t
	p.enter(idx)
}

// Tick advances the timeline by dt and emits hooks for the current clip.
func (p *Player) Tick(dt time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt.Seconds()

	clip, localT := p.current()
	for label, env := range clip.Controls {
		if p.hooks.SetControl == nil {
			break
		}
		if err := p.hooks.SetControl(label, env.Eval(localT)); err != nil {
			p.warnOnce(clip.Name+"/"+label, err)
		}
	}

	if clip.XFadeS > 0 {
		remain := clip.DurationS - localT
		if remain <= clip.XFadeS && remain >= 0 {
			next := p.nextIndex()
			if !p.armed && next != -1 && p.hooks.ArmNext != nil {
				nc := p.prog.Clips[next]
				if err := p.hooks.ArmNext(nc.Pattern); err != nil {
					p.warnOnce("arm/"+nc.Pattern, err)
				}
				p.armed = true
			}
			if p.armed {
				if alpha := clamp01(1 - remain/clip.XFadeS); alpha != p.lastAlpha {
					p.crossfade(alpha)
				}
			}
		}
	}

	if localT >= clip.DurationS {
		p.advance()
	}
}

func (p *Player) current() (Clip, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	return p.prog.Clips[p.idx], p.nowS - acc
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advance() {
	next := p.nextIndex()
	if next == -1 {
		p.state = Idle
		p.crossfade(0)
		p.log.Info().Msg("show finished")
		return
	}
	if next == 0 {
		p.nowS -= p.prog.Duration()
	}
	p.enter(next)
}

// enter snaps to clip i and resets crossfade bookkeeping.
func (p *Player) enter(i int) {
	p.idx = i
	clip := p.prog.Clips[i]
	if p.hooks.SetPattern != nil {
		if err := p.hooks.SetPattern(clip.Pattern); err != nil {
			p.warnOnce("set/"+clip.Pattern, err)
		}
	}
	p.crossfade(0)
	p.armed = false
	p.lastAlpha = 0
	p.log.Debug().Str("clip", clip.Name).Str("pattern", clip.Pattern).Msg("clip")
}

func (p *Player) crossfade(alpha float64) {
	p.lastAlpha = alpha
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(alpha)
	}
}

func (p *Player) warnOnce(key string, err error) {
	if p.warned[key] {
		return
	}
	p.warned[key] = true
	p.log.Warn().Err(err).Str("key", key).Msg("show hook failed")
}
