package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-shaderfx/internal/app"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/audio"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/config"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/led"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/model"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/post"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/preview"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/sample"
	"github.com/coreman2200/arcaluminis-shaderfx/internal/shaders"
)

func main() {
	// ---- Flags (config.yaml overrides where set) ----
	var (
		x           = flag.Int("x", 9, "LEDs per row (X)")
		y           = flag.Int("y", 26, "LED rows per panel (Y)")
		z           = flag.Int("z", 5, "panels (Z)")
		xFlip       = flag.Bool("x-flip-every-row", true, "serpentine: flip every row along X")
		yFlip       = flag.Bool("y-flip-every-panel", true, "serpentine: flip every panel along Y")
		pitchMM     = flag.Float64("pitch-mm", 10, "LED pitch (mm)")
		panelGapMM  = flag.Float64("panel-gap-mm", 50, "panel gap (mm) along Z")
		fps         = flag.Int("fps", 60, "target frames per second")
		brightness  = flag.Float64("brightness", 0.8, "global brightness 0..1")
		driver      = flag.String("driver", "sim", "driver: spi | sim")
		workers     = flag.Int("workers", 1, "shader workers; >1 evaluates in parallel chunks")
		shaderList  = flag.String("shaders", "technochurch", "comma-separated shader kinds layered in the main pattern")
		patternName = flag.String("pattern", app.MainPattern, "initially active pattern")
		gaps        = flag.String("gaps", "transparent", "gap point policy: transparent | skip")
		orient      = flag.String("orientation", "front", "canvas projection: front | side | top")
		bpm         = flag.Float64("bpm", 120, "tempo")
		audioFile   = flag.String("audio", "", "WAV file to analyse while running")
		showPath    = flag.String("show", "", "show YAML to play")
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		configPath  = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly     = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	diag := preview.NewDiagnostics(64)
	log.Logger = log.Logger.Hook(diag.Hook())

	// ---- Load config.yaml (optional) ----
	cfg := &config.Config{}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	// ---- Effective params (config overrides flags where available) ----
	lat := model.Lattice{
		X:          firstNonZero(cfg.Dim.X, *x),
		Y:          firstNonZero(cfg.Dim.Y, *y),
		Z:          firstNonZero(cfg.Dim.Z, *z),
		Order:      model.Serpentine{XFlipEveryRow: firstSet(cfg.XFlipEveryRow, *xFlip), YFlipEveryPanel: firstSet(cfg.YFlipEveryPanel, *yFlip)},
		PitchMM:    firstNonZeroFloat(cfg.PitchMM, *pitchMM),
		PanelGapMM: firstNonZeroFloat(cfg.PanelGapMM, *panelGapMM),
		SeamRows:   cfg.SeamRows,
	}
	eFPS := firstNonZero(cfg.FPS, *fps)

	kinds := cfg.Shaders
	if len(kinds) == 0 {
		kinds = strings.Split(*shaderList, ",")
	}
	var opts app.Options
	for _, k := range kinds {
		kind, err := shaders.ParseKind(strings.TrimSpace(k))
		if err != nil {
			log.Fatal().Err(err).Msg("shaders")
		}
		opts.Shaders = append(opts.Shaders, kind)
	}
	gp, err := sample.ParseGapPolicy(firstNonEmpty(cfg.GapPolicy, *gaps))
	if err != nil {
		log.Fatal().Err(err).Msg("gap policy")
	}
	or, err := sample.ParseOrientation(firstNonEmpty(cfg.Orientation, *orient))
	if err != nil {
		log.Fatal().Err(err).Msg("orientation")
	}
	opts.Lattice = lat
	opts.Width, opts.Height = cfg.Canvas.Width, cfg.Canvas.Height
	opts.Workers = firstNonZero(cfg.Workers, *workers)
	opts.Projection = sample.Options{Orientation: or, Gaps: gp}
	opts.Pattern = firstNonEmpty(cfg.Pattern, *patternName)
	opts.BPM = firstNonZeroFloat(cfg.Tempo.BPM, *bpm)
	opts.Base, opts.Accent = cfg.Palette.Base, cfg.Palette.Accent
	opts.Post = post.Params{
		Brightness: firstNonZeroFloat(cfg.Brightness, *brightness),
		WhiteCap:   cfg.Power.WhiteCap,
		LEDChanMA:  cfg.Power.ChanMA,
		BudgetMA:   cfg.Power.BudgetMA,
		ToneMap:    cfg.ToneMap.Enabled,
		ExposureEV: cfg.ToneMap.ExposureEV,
		Gamma:      cfg.ToneMap.Gamma,
	}

	// ---- Driver selection: -sim-only overrides; otherwise config.driver then -driver ----
	selected := firstNonEmpty(cfg.Driver, *driver)
	if *simOnly {
		selected = "sim"
	}
	drv, err := led.Open(led.Config{
		Kind:     selected,
		Port:     cfg.SPI.Dev,
		SpeedHz:  cfg.SPI.SpeedHz,
		Count:    lat.Count(),
		LogEvery: eFPS * 5,
	}, log.Logger.With().Str("component", "led").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("driver")
	}

	// ---- Core ----
	core, err := app.Build(opts, drv, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build")
	}
	if p := firstNonEmpty(cfg.Show, *showPath); p != "" {
		if err := core.LoadShow(p); err != nil {
			log.Error().Err(err).Str("path", p).Msg("show not loaded")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if f := firstNonEmpty(cfg.Audio.File, *audioFile); f != "" {
		go func() {
			if err := audio.Feed(ctx, f, core.Audio, time.Second/time.Duration(eFPS)); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Str("file", f).Msg("audio feed stopped")
			}
		}()
	}

	// ---- Preview + HTTP ----
	pv := preview.NewServer(core.Engine, lat.Count(), eFPS, log.Logger.With().Str("component", "preview").Logger())
	pv.Diag = diag
	core.Engine.OnFrame(pv.Broadcast)
	go pv.Run(ctx)

	mux := http.NewServeMux()
	pv.Routes(mux)
	listen := firstNonEmpty(cfg.Preview.Addr, *addr)
	srv := &http.Server{
		Addr:         listen,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", listen).Str("driver", selected).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Render loop until signal ----
	_ = core.Engine.Run(ctx, eFPS)
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func firstNonZero(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func firstNonZeroFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func firstSet(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
