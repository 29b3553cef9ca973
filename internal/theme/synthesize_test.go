package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireComplete asserts that every field a scene consumer may dereference is
// populated.
func requireComplete(t *testing.T, th BrandTheme) {
	t.Helper()
	require.NotEmpty(t, th.Colors.Primary)
	require.NotEmpty(t, th.Colors.Secondary)
	require.NotEmpty(t, th.Colors.Accents)
	require.NotEmpty(t, th.Colors.Neutrals.Light)
	require.NotEmpty(t, th.Colors.Neutrals.Dark)
	require.NotEmpty(t, th.Colors.Neutrals.Muted)
	require.NotEmpty(t, th.Colors.TextDefault)
	require.NotEmpty(t, th.Fonts.Heading.Family)
	require.NotEmpty(t, th.Fonts.Body.Family)
	require.NotEmpty(t, th.Fonts.Mono.Family)
	require.NotEmpty(t, th.Assets.LogoURL)
	require.NotEmpty(t, th.Copy.BrandName)
	require.NotEmpty(t, th.Copy.Tagline)
	require.NotEmpty(t, th.Copy.Mission)
	require.NotEmpty(t, th.Copy.Voice)
	require.NotEmpty(t, th.Copy.HeroHeadline)
	require.NotEmpty(t, th.Copy.HeroSubheadline)
	require.NotEmpty(t, th.Copy.CallToAction)
	require.NotNil(t, th.Meta.SceneStatuses)
}

func TestSynthesize_NilPartial(t *testing.T) {
	th := Synthesize(nil, Defaults())
	requireComplete(t, th)
	assert.Equal(t, Defaults().Colors, th.Colors)
	assert.Equal(t, Defaults().Copy, th.Copy)
}

func TestSynthesize_EmptyPartial(t *testing.T) {
	th := Synthesize(&PartialTheme{}, Defaults())
	requireComplete(t, th)
	assert.Equal(t, Defaults().Fonts, th.Fonts)
}

func TestSynthesize_OverrideCorrectness(t *testing.T) {
	partial := &PartialTheme{
		Colors: &PartialColors{Primary: "#123456"},
	}
	th := Synthesize(partial, Defaults())

	requireComplete(t, th)
	assert.Equal(t, "#123456", th.Colors.Primary)
	// Everything else stays at defaults.
	d := Defaults()
	assert.Equal(t, d.Colors.Secondary, th.Colors.Secondary)
	assert.Equal(t, d.Colors.Accents, th.Colors.Accents)
	assert.Equal(t, d.Colors.Neutrals, th.Colors.Neutrals)
	assert.Equal(t, d.Fonts, th.Fonts)
	assert.Equal(t, d.Copy, th.Copy)
}

func TestSynthesize_NeutralsMergePerField(t *testing.T) {
	partial := &PartialTheme{
		Colors: &PartialColors{
			Neutrals: &PartialNeutrals{Dark: "#000000"},
		},
	}
	th := Synthesize(partial, Defaults())

	assert.Equal(t, "#000000", th.Colors.Neutrals.Dark)
	assert.Equal(t, Defaults().Colors.Neutrals.Light, th.Colors.Neutrals.Light)
	assert.Equal(t, Defaults().Colors.Neutrals.Muted, th.Colors.Neutrals.Muted)
}

func TestSynthesize_AccentsReplaceWholesale(t *testing.T) {
	partial := &PartialTheme{
		Colors: &PartialColors{Accents: []string{"#aaaaaa"}},
	}
	th := Synthesize(partial, Defaults())
	assert.Equal(t, []string{"#aaaaaa"}, th.Colors.Accents)

	// Empty accent list falls back to the whole default sequence.
	partial.Colors.Accents = nil
	th = Synthesize(partial, Defaults())
	assert.Equal(t, Defaults().Colors.Accents, th.Colors.Accents)
}

func TestSynthesize_FontsMergePerField(t *testing.T) {
	partial := &PartialTheme{
		Fonts: &PartialFonts{
			Heading: &PartialFont{Family: "Playfair Display"},
		},
	}
	th := Synthesize(partial, Defaults())

	assert.Equal(t, "Playfair Display", th.Fonts.Heading.Family)
	// Weight falls back individually, not with the whole font slot.
	assert.Equal(t, Defaults().Fonts.Heading.Weight, th.Fonts.Heading.Weight)
	assert.Equal(t, Defaults().Fonts.Body, th.Fonts.Body)
}

func TestSynthesize_CopyEnsuredPerField(t *testing.T) {
	partial := &PartialTheme{
		Copy: &PartialCopy{
			BrandName: "Acme",
			Tagline:   "Rockets for roadrunners",
		},
	}
	th := Synthesize(partial, Defaults())

	assert.Equal(t, "Acme", th.Copy.BrandName)
	assert.Equal(t, "Rockets for roadrunners", th.Copy.Tagline)
	assert.Equal(t, Defaults().Copy.Mission, th.Copy.Mission)
	assert.Equal(t, Defaults().Copy.HeroHeadline, th.Copy.HeroHeadline)
	assert.NotEmpty(t, th.Copy.CallToAction)
}

func TestSynthesize_VariantsMerged(t *testing.T) {
	defaults := Defaults()
	defaults.Variants = map[string]string{"rounding": "lg", "shadow": "sm"}

	partial := &PartialTheme{Variants: map[string]string{"shadow": "xl"}}
	th := Synthesize(partial, defaults)

	assert.Equal(t, "lg", th.Variants["rounding"])
	assert.Equal(t, "xl", th.Variants["shadow"])
}

func TestSynthesize_ConfidenceStoredForDisplay(t *testing.T) {
	partial := &PartialTheme{Confidence: map[string]float64{"colors": 0.92}}
	th := Synthesize(partial, Defaults())
	assert.Equal(t, 0.92, th.Meta.Confidence["colors"])
}

func TestSynthesize_DoesNotAliasDefaults(t *testing.T) {
	defaults := Defaults()
	th := Synthesize(nil, defaults)

	th.Colors.Accents[0] = "#mutated"
	th.Meta.SceneStatuses["scene-1"] = SceneStatusEntry{Status: SceneCompleted}

	assert.NotEqual(t, "#mutated", defaults.Colors.Accents[0])
	assert.Empty(t, defaults.Meta.SceneStatuses)
}

func TestClone_IndependentStatuses(t *testing.T) {
	th := Defaults()
	th.Meta.SceneStatuses["a"] = SceneStatusEntry{Status: SceneCompleted, Summary: "done"}

	cp := th.Clone()
	cp.Meta.SceneStatuses["b"] = SceneStatusEntry{Status: SceneFailed}

	assert.Len(t, th.Meta.SceneStatuses, 1)
	assert.Len(t, cp.Meta.SceneStatuses, 2)
}
