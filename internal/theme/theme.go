// Package theme defines the brand theme model and the synthesis step that
// turns partial extraction output into a fully-populated, render-safe theme.
package theme

import "time"

// SceneStatus is the outcome of the last application attempt for one scene.
type SceneStatus string

const (
	ScenePending    SceneStatus = "pending"
	SceneInProgress SceneStatus = "in_progress"
	SceneCompleted  SceneStatus = "completed"
	SceneFailed     SceneStatus = "failed"
)

// SceneStatusEntry records one (target, scene) application attempt. Absence of
// an entry means the scene was never attempted for that target.
type SceneStatusEntry struct {
	Status    SceneStatus `json:"status"`
	Summary   string      `json:"summary,omitempty"`
	Message   string      `json:"message,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Font describes one font slot of the theme.
type Font struct {
	Family string `json:"family" yaml:"family"`
	Weight string `json:"weight,omitempty" yaml:"weight"`
	Style  string `json:"style,omitempty" yaml:"style"`
}

// Neutrals are the non-brand support colors scenes lean on.
type Neutrals struct {
	Light string `json:"light" yaml:"light"`
	Dark  string `json:"dark" yaml:"dark"`
	Muted string `json:"muted" yaml:"muted"`
}

// Colors is the fully-populated color set of a theme.
type Colors struct {
	Primary     string   `json:"primary" yaml:"primary"`
	Secondary   string   `json:"secondary" yaml:"secondary"`
	Accents     []string `json:"accents" yaml:"accents"`
	Neutrals    Neutrals `json:"neutrals" yaml:"neutrals"`
	TextDefault string   `json:"textDefault" yaml:"textDefault"`
}

// Fonts holds the three font slots every scene may dereference.
type Fonts struct {
	Heading Font `json:"heading" yaml:"heading"`
	Body    Font `json:"body" yaml:"body"`
	Mono    Font `json:"mono" yaml:"mono"`
}

// Assets are the brand asset URLs spliced into scenes.
type Assets struct {
	LogoURL     string `json:"logoUrl" yaml:"logoUrl"`
	LogoDarkURL string `json:"logoDarkUrl" yaml:"logoDarkUrl"`
	IconURL     string `json:"iconUrl" yaml:"iconUrl"`
}

// Copy is the narrative content of a theme. Every field is required after
// synthesis; scene editors splice these strings verbatim.
type Copy struct {
	BrandName       string `json:"brandName" yaml:"brandName"`
	Tagline         string `json:"tagline" yaml:"tagline"`
	Mission         string `json:"mission" yaml:"mission"`
	Voice           string `json:"voice" yaml:"voice"`
	HeroHeadline    string `json:"heroHeadline" yaml:"heroHeadline"`
	HeroSubheadline string `json:"heroSubheadline" yaml:"heroSubheadline"`
	CallToAction    string `json:"callToAction" yaml:"callToAction"`
}

// Meta carries the durable per-scene personalization state plus display-only
// extraction metadata.
type Meta struct {
	SceneStatuses map[string]SceneStatusEntry `json:"sceneStatuses"`
	Confidence    map[string]float64          `json:"confidence,omitempty"`
	SourceURL     string                      `json:"sourceUrl,omitempty"`
}

// BrandTheme is a complete brand description. Every field a scene renderer or
// editor might dereference is guaranteed non-empty after Synthesize.
type BrandTheme struct {
	Colors   Colors            `json:"colors" yaml:"colors"`
	Fonts    Fonts             `json:"fonts" yaml:"fonts"`
	Assets   Assets            `json:"assets" yaml:"assets"`
	Copy     Copy              `json:"copy" yaml:"copy"`
	Variants map[string]string `json:"variants,omitempty" yaml:"variants"`
	Meta     Meta              `json:"meta"`
}

// Clone returns a deep copy safe to mutate independently.
func (t BrandTheme) Clone() BrandTheme {
	out := t
	out.Colors.Accents = append([]string(nil), t.Colors.Accents...)
	out.Variants = cloneStringMap(t.Variants)
	out.Meta.Confidence = cloneFloatMap(t.Meta.Confidence)
	out.Meta.SceneStatuses = CloneStatuses(t.Meta.SceneStatuses)
	return out
}

// CloneStatuses copies a scene status map. A nil input yields an empty map so
// callers can merge into the result without nil checks.
func CloneStatuses(in map[string]SceneStatusEntry) map[string]SceneStatusEntry {
	out := make(map[string]SceneStatusEntry, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFloatMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
