// Package theme holds the declarative theme configuration consumed by the
// CSS transformer: class prefix, color palette, font tokens, breakpoints,
// spacing scale, content-scan globs, and custom utilities.
//
// The document is loaded once at startup from a YAML file; a missing file
// falls back to the built-in default theme, a malformed one is a fatal
// configuration error.
package theme

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Theme struct {
	// Prefix is prepended to every generated utility class name.
	Prefix string `yaml:"prefix"`

	// Content lists the globs scanned for class-name usage; only utilities
	// referenced somewhere in these files are emitted.
	Content []string `yaml:"content"`

	Colors       map[string]string `yaml:"colors"`
	FontFamilies map[string]string `yaml:"fontFamilies"`
	FontWeights  map[string]int    `yaml:"fontWeights"`

	// Screens maps breakpoint names to min-width values for responsive
	// variants (e.g. "md:wd-flex").
	Screens map[string]string `yaml:"screens"`

	// Spacing maps scale steps to lengths for margin/padding utilities.
	Spacing map[string]string `yaml:"spacing"`

	// Utilities holds custom single-class utilities declared directly in
	// the theme file: class name (unprefixed) to declarations.
	Utilities map[string]map[string]string `yaml:"utilities"`
}

// Default returns the built-in starter theme.
func Default() *Theme {
	return &Theme{
		Prefix: "wd-",
		Content: []string{
			"src/public/**/*.html",
			"src/public/**/*.hbs",
			"src/assets/js/**/*.js",
		},
		Colors: map[string]string{
			"black":   "#000000",
			"white":   "#ffffff",
			"dark1":   "#353b48",
			"dark2":   "#2f3640",
			"grey1":   "#f5f6fa",
			"grey2":   "#dcdde1",
			"red1":    "#e84118",
			"red2":    "#c23616",
			"green1":  "#4cd137",
			"green2":  "#44bd32",
			"blue1":   "#00a8ff",
			"blue2":   "#0097e6",
			"navy1":   "#273c75",
			"navy2":   "#192a56",
			"yellow1": "#fbc531",
			"yellow2": "#e1b12c",
			"purple1": "#9c88ff",
			"purple2": "#8c7ae6",
		},
		FontFamilies: map[string]string{
			"base":      "Nunito Sans, sans-serif",
			"secondary": "Roboto, sans-serif",
		},
		FontWeights: map[string]int{
			"light":    300,
			"regular":  400,
			"medium":   500,
			"semibold": 600,
			"bold":     700,
			"black":    900,
		},
		Screens: map[string]string{
			"sm": "640px",
			"md": "768px",
			"lg": "1024px",
			"xl": "1280px",
		},
		Spacing: map[string]string{
			"0":  "0",
			"1":  "0.25rem",
			"2":  "0.5rem",
			"3":  "0.75rem",
			"4":  "1rem",
			"5":  "1.25rem",
			"6":  "1.5rem",
			"8":  "2rem",
			"10": "2.5rem",
			"12": "3rem",
			"16": "4rem",
		},
	}
}

// Load reads a theme file. A missing file yields the default theme; a file
// that exists but does not parse is an error.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}

	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing theme %s: %w", path, err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}

func (t *Theme) validate() error {
	for name, v := range t.Colors {
		if v == "" {
			return fmt.Errorf("color %q has empty value", name)
		}
	}
	for name, v := range t.Screens {
		if v == "" {
			return fmt.Errorf("screen %q has empty value", name)
		}
	}
	return nil
}
