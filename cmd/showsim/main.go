// Command showsim plays a show file through the full engine against the simulated driver, as
// fast as it renders, and logs every clip change and a frame summary.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/app"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/led"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/show"
)

func main() {
	var (
		programPath = flag.String("show", "", "path to a show YAML")
		fps         = flag.Int("fps", 60, "simulation frames per second")
		workers     = flag.Int("workers", 1, "shader workers")
		maxS        = flag.Float64("max", 600, "stop after this many simulated seconds")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if *programPath == "" {
		log.Fatal().Msg("provide -show path to a show YAML")
	}

	lat := model.Lattice{X: 9, Y: 26, Z: 5, Order: model.Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}, PanelGapMM: 50}
	sim := led.NewSim(lat.Count(), *fps, log.Logger)
	core, err := app.Build(app.Options{Lattice: lat, Workers: *workers, BPM: 120}, sim, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build")
	}
	defer core.Close()

	if err := core.LoadShow(*programPath); err != nil {
		log.Fatal().Err(err).Msg("load")
	}

	dt := time.Second / time.Duration(max(1, *fps))
	start := time.Now()
	frames := 0
	for t := 0.0; t < *maxS; t += dt.Seconds() {
		if err := core.Engine.RenderOnce(dt); err != nil {
			log.Error().Err(err).Msg("render")
		}
		frames++
		if core.Player.State() == show.Idle {
			break
		}
	}
	st := core.Engine.Stats()
	log.Info().
		Int("frames", frames).
		Dur("wall", time.Since(start)).
		Float64("last_total_ms", st.TotalMS).
		Str("active", st.Active).
		Msg("done")
}
