package theme

// PartialTheme is a sparse brand description as returned by the analyzer
// collaborator. Empty strings and nil sub-structs mean "not detected" and fall
// back to defaults during synthesis.
type PartialTheme struct {
	Colors     *PartialColors     `json:"colors,omitempty" yaml:"colors"`
	Fonts      *PartialFonts      `json:"fonts,omitempty" yaml:"fonts"`
	Assets     *PartialAssets     `json:"assets,omitempty" yaml:"assets"`
	Copy       *PartialCopy       `json:"copy,omitempty" yaml:"copy"`
	Variants   map[string]string  `json:"variants,omitempty" yaml:"variants"`
	Confidence map[string]float64 `json:"confidence,omitempty" yaml:"confidence"`
}

// PartialColors mirrors Colors with every field optional.
type PartialColors struct {
	Primary     string           `json:"primary,omitempty" yaml:"primary"`
	Secondary   string           `json:"secondary,omitempty" yaml:"secondary"`
	Accents     []string         `json:"accents,omitempty" yaml:"accents"`
	Neutrals    *PartialNeutrals `json:"neutrals,omitempty" yaml:"neutrals"`
	TextDefault string           `json:"textDefault,omitempty" yaml:"textDefault"`
}

// PartialNeutrals mirrors Neutrals with every field optional.
type PartialNeutrals struct {
	Light string `json:"light,omitempty" yaml:"light"`
	Dark  string `json:"dark,omitempty" yaml:"dark"`
	Muted string `json:"muted,omitempty" yaml:"muted"`
}

// PartialFonts mirrors Fonts with every slot optional.
type PartialFonts struct {
	Heading *PartialFont `json:"heading,omitempty" yaml:"heading"`
	Body    *PartialFont `json:"body,omitempty" yaml:"body"`
	Mono    *PartialFont `json:"mono,omitempty" yaml:"mono"`
}

// PartialFont mirrors Font with every field optional.
type PartialFont struct {
	Family string `json:"family,omitempty" yaml:"family"`
	Weight string `json:"weight,omitempty" yaml:"weight"`
	Style  string `json:"style,omitempty" yaml:"style"`
}

// PartialAssets mirrors Assets with every field optional.
type PartialAssets struct {
	LogoURL     string `json:"logoUrl,omitempty" yaml:"logoUrl"`
	LogoDarkURL string `json:"logoDarkUrl,omitempty" yaml:"logoDarkUrl"`
	IconURL     string `json:"iconUrl,omitempty" yaml:"iconUrl"`
}

// PartialCopy mirrors Copy with every field optional.
type PartialCopy struct {
	BrandName       string `json:"brandName,omitempty" yaml:"brandName"`
	Tagline         string `json:"tagline,omitempty" yaml:"tagline"`
	Mission         string `json:"mission,omitempty" yaml:"mission"`
	Voice           string `json:"voice,omitempty" yaml:"voice"`
	HeroHeadline    string `json:"heroHeadline,omitempty" yaml:"heroHeadline"`
	HeroSubheadline string `json:"heroSubheadline,omitempty" yaml:"heroSubheadline"`
	CallToAction    string `json:"callToAction,omitempty" yaml:"callToAction"`
}
