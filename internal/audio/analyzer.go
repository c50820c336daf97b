// Package audio turns a sample stream into the bass, treble and volume envelopes shaders react to.
package audio

import (
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/host"
)

const (
	// FFTSize matches the Shadertoy audio texture: 2048 samples, 1024 bins.
	FFTSize = 2048

	BassHz   = 250.0
	TrebleHz = 4000.0

	minDecibels = -100.0
	maxDecibels = -30.0
	// volume is scaled over a wider, full-scale-referenced window
	minVolumeDB = -60.0
)

// Options tune the envelope followers. Zero values pick the defaults.
type Options struct {
	SampleRate int     // default 48000
	Attack     float64 // fraction of a rise taken per update, default 0.6
	Decay      float64 // fraction of a fall taken per update, default 0.1
}

// Analyzer keeps the most recent FFTSize mono samples and derives envelopes from them on Update.
// Push may be called from a feeder goroutine while the render loop calls Update and Levels.
type Analyzer struct {
	mu      sync.Mutex
	opts    Options
	history []float64
	pos     int
	window  []float64
	frame   []float64

	levels  host.Levels
	bassAvg float64
	onset   bool
}

func NewAnalyzer(opts Options) *Analyzer {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.Attack <= 0 || opts.Attack > 1 {
		opts.Attack = 0.6
	}
	if opts.Decay <= 0 || opts.Decay > 1 {
		opts.Decay = 0.1
	}
	return &Analyzer{
		opts:    opts,
		history: make([]float64, FFTSize),
		window:  window.Blackman(FFTSize),
		frame:   make([]float64, FFTSize),
	}
}

// SetSampleRate changes the rate used to map bins to frequencies.
func (a *Analyzer) SetSampleRate(rate int) {
	if rate <= 0 {
		return
	}
	a.mu.Lock()
	a.opts.SampleRate = rate
	a.mu.Unlock()
}

func (a *Analyzer) SampleRate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts.SampleRate
}

// Push appends mono samples in -1..1 to the history ring.
func (a *Analyzer) Push(samples []float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.history[a.pos] = s
		a.pos = (a.pos + 1) % FFTSize
	}
	a.mu.Unlock()
}

// Update analyses the latest window and moves the envelopes one step.
func (a *Analyzer) Update() {
	a.mu.Lock()
	defer a.mu.Unlock()

	sumSq := 0.0
	for i := range a.frame {
		s := a.history[(a.pos+i)%FFTSize]
		sumSq += s * s
		a.frame[i] = s * a.window[i]
	}
	spectrum := fft.FFTReal(a.frame)

	binHz := float64(a.opts.SampleRate) / FFTSize
	bassTop := int(BassHz / binHz)
	trebleLow := int(math.Ceil(TrebleHz / binHz))
	bass := scaleDB(peak(spectrum, 1, bassTop))
	treble := scaleDB(peak(spectrum, trebleLow, FFTSize/2))

	volume := 0.0
	if rms := math.Sqrt(sumSq / FFTSize); rms > 1e-9 {
		volume = clamp01((20*math.Log10(rms) - minVolumeDB) / -minVolumeDB)
	}

	onset := bass > 0.3 && bass > 1.3*a.bassAvg
	a.levels.Beat = onset && !a.onset
	a.onset = onset
	a.bassAvg = 0.95*a.bassAvg + 0.05*bass

	a.levels.Bass = a.follow(a.levels.Bass, bass)
	a.levels.Treble = a.follow(a.levels.Treble, treble)
	a.levels.Volume = a.follow(a.levels.Volume, volume)
}

func (a *Analyzer) follow(cur, target float64) float64 {
	k := a.opts.Decay
	if target > cur {
		k = a.opts.Attack
	}
	return cur + (target-cur)*k
}

// Levels returns the envelopes as of the last Update.
func (a *Analyzer) Levels() host.Levels {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.levels
}

// peak returns the largest normalised magnitude in bins [lo, hi].
func peak(spectrum []complex128, lo, hi int) float64 {
	lo = max(lo, 0)
	hi = min(hi, len(spectrum)-1)
	best := 0.0
	for i := lo; i <= hi; i++ {
		re, im := real(spectrum[i]), imag(spectrum[i])
		// 2/N for every non-DC bin
		m := math.Sqrt(re*re+im*im) * (2.0 / FFTSize)
		best = math.Max(best, m)
	}
	return best
}

func scaleDB(mag float64) float64 {
	db := 20 * math.Log10(mag+1e-9)
	return clamp01((db - minDecibels) / (maxDecibels - minDecibels))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
