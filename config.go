// config.go
// Copyright(c) 2026 quill contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"io"
	"os"
	"path"
)

type GlobalConfig struct {
	Version               int
	InitialWindowSize     [2]int
	InitialWindowPosition [2]int

	FontPath  string
	FontSize  int
	FontChars string

	// Colors are packed 0xRRGGBB.
	TextColor       int
	BackgroundColor int
	LineSpacing     int

	StartInFullScreen bool
	FullScreenMonitor int
}

const configVersion = 1

func configFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}

	dir = path.Join(dir, "Quill")
	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		lg.Errorf("%s: unable to make directory for config file: %v", dir, err)
	}

	return path.Join(dir, "config.json")
}

func (gc *GlobalConfig) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(gc)
}

func (gc *GlobalConfig) Save() error {
	lg.Infof("Saving config to: %s", configFilePath())
	f, err := os.Create(configFilePath())
	if err != nil {
		return err
	}
	defer f.Close()

	return gc.Encode(f)
}

// asciiPrintable returns the default character set loaded into the glyph
// atlas: the printable ASCII range.
func asciiPrintable() string {
	var rs []rune
	for r := rune(' '); r <= '~'; r++ {
		rs = append(rs, r)
	}
	return string(rs)
}

func defaultConfig() *GlobalConfig {
	return &GlobalConfig{
		Version:               configVersion,
		InitialWindowSize:     [2]int{1024, 768},
		InitialWindowPosition: [2]int{100, 100},
		FontSize:              16,
		FontChars:             asciiPrintable(),
		TextColor:             0xe8e8e8,
		BackgroundColor:       0x1c1c24,
		LineSpacing:           2,
	}
}

// LoadOrMakeDefaultConfig reads the config file, falling back to the
// defaults if it is missing or unparseable.
func LoadOrMakeDefaultConfig() *GlobalConfig {
	config := defaultConfig()

	fn := configFilePath()
	if b, err := os.ReadFile(fn); err == nil {
		if err := json.Unmarshal(b, config); err != nil {
			lg.Errorf("%s: %v", fn, err)
			config = defaultConfig()
		}
		if config.Version < configVersion {
			// No incompatible versions yet; just stamp it.
			config.Version = configVersion
		}
		if config.FontChars == "" {
			config.FontChars = asciiPrintable()
		}
	} else {
		lg.Infof("%s: config file not found, using defaults", fn)
	}

	return config
}
