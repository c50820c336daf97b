// Package config loads and saves the YAML runtime configuration. Zero values mean "not set" so
// command-line flags can supply defaults.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type PowerCfg struct {
	WhiteCap float64 `yaml:"white_cap"`
	BudgetMA float64 `yaml:"budget_ma"`
	ChanMA   float64 `yaml:"chan_ma"`
}

type ToneMap struct {
	Enabled    bool    `yaml:"enabled"`
	ExposureEV float64 `yaml:"exposure_ev"`
	Gamma      float64 `yaml:"gamma"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // periph port name, e.g. SPI0.0; empty picks the first
	SpeedHz int    `yaml:"speed_hz"` // NRZ bit rate, e.g. 800000
}

type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Tempo struct {
	BPM float64 `yaml:"bpm"`
}

type Palette struct {
	Base   string `yaml:"base"`
	Accent string `yaml:"accent"`
}

type Audio struct {
	File string `yaml:"file"`
}

type Preview struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	Driver     string  `yaml:"driver"` // "spi" | "sim"
	Brightness float64 `yaml:"brightness"`
	FPS        int     `yaml:"fps"`

	Dim             Dim     `yaml:"dim"`
	PitchMM         float64 `yaml:"pitch_mm"`
	PanelGapMM      float64 `yaml:"panel_gap_mm"`
	XFlipEveryRow   *bool   `yaml:"x_flip_every_row,omitempty"`
	YFlipEveryPanel *bool   `yaml:"y_flip_every_panel,omitempty"`
	SeamRows        []int   `yaml:"seam_rows,omitempty"`

	Canvas      Canvas   `yaml:"canvas"`
	Workers     int      `yaml:"workers"`
	Pattern     string   `yaml:"pattern"`
	Shaders     []string `yaml:"shaders,omitempty"`
	GapPolicy   string   `yaml:"gap_policy"` // "transparent" | "skip"
	Orientation string   `yaml:"orientation"`
	Show        string   `yaml:"show,omitempty"`

	Tempo   Tempo    `yaml:"tempo"`
	Palette Palette  `yaml:"palette"`
	Audio   Audio    `yaml:"audio,omitempty"`
	Power   PowerCfg `yaml:"power"`
	ToneMap ToneMap  `yaml:"tonemap,omitempty"`
	SPI     SPI      `yaml:"spi,omitempty"`
	Preview Preview  `yaml:"preview"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
