package theme

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults returns the built-in default theme. Every field is populated; this
// is the fallback table Synthesize draws from.
func Defaults() BrandTheme {
	return BrandTheme{
		Colors: Colors{
			Primary:   "#2563eb",
			Secondary: "#7c3aed",
			Accents:   []string{"#f59e0b", "#10b981", "#ef4444"},
			Neutrals: Neutrals{
				Light: "#f8fafc",
				Dark:  "#0f172a",
				Muted: "#64748b",
			},
			TextDefault: "#111827",
		},
		Fonts: Fonts{
			Heading: Font{Family: "Inter", Weight: "700"},
			Body:    Font{Family: "Inter", Weight: "400"},
			Mono:    Font{Family: "JetBrains Mono", Weight: "400"},
		},
		Assets: Assets{
			LogoURL:     "https://assets.brandforge.dev/placeholder/logo.svg",
			LogoDarkURL: "https://assets.brandforge.dev/placeholder/logo-dark.svg",
			IconURL:     "https://assets.brandforge.dev/placeholder/icon.svg",
		},
		Copy: Copy{
			BrandName:       "Your Brand",
			Tagline:         "Build something people love",
			Mission:         "We help teams ship products their customers love.",
			Voice:           "confident, friendly, direct",
			HeroHeadline:    "Meet your next favorite product",
			HeroSubheadline: "Everything you need, nothing you don't.",
			CallToAction:    "Get started",
		},
		Meta: Meta{
			SceneStatuses: map[string]SceneStatusEntry{},
		},
	}
}

// LoadDefaults returns the default theme, overlaid with the YAML file at path
// when path is non-empty. The file is parsed as a partial theme and merged
// through Synthesize, so a sparse override file is fine.
func LoadDefaults(path string) (BrandTheme, error) {
	base := Defaults()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading default theme file: %w", err)
	}

	var partial PartialTheme
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return base, fmt.Errorf("parsing default theme file: %w", err)
	}

	return Synthesize(&partial, base), nil
}
