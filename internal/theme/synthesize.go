package theme

// Synthesize merges a possibly-nil partial brand description with a complete
// default theme. The result always has every leaf field populated: values come
// from partial where present and non-empty, otherwise from defaults.
//
// Merging is field-by-field for composite structures. Accents are the one
// exception and replace wholesale: a partial accent list is used only if it is
// non-empty, because merging positional accent sequences element-wise is not
// meaningful.
//
// Synthesize never fails. Scene editors dereference deep paths like
// fonts.heading.family unconditionally, so every gap must be closed here
// rather than surfacing as a render-time crash far from the cause.
func Synthesize(partial *PartialTheme, defaults BrandTheme) BrandTheme {
	out := defaults.Clone()
	if out.Meta.SceneStatuses == nil {
		out.Meta.SceneStatuses = make(map[string]SceneStatusEntry)
	}
	if partial == nil {
		return out
	}

	mergeColors(&out.Colors, partial.Colors)
	mergeFonts(&out.Fonts, partial.Fonts)
	mergeAssets(&out.Assets, partial.Assets)
	ensureCopy(&out.Copy, partial.Copy)

	if len(partial.Variants) > 0 {
		if out.Variants == nil {
			out.Variants = make(map[string]string, len(partial.Variants))
		}
		for k, v := range partial.Variants {
			out.Variants[k] = v
		}
	}
	if len(partial.Confidence) > 0 {
		out.Meta.Confidence = cloneFloatMap(partial.Confidence)
	}

	return out
}

func mergeColors(dst *Colors, src *PartialColors) {
	if src == nil {
		return
	}
	if src.Primary != "" {
		dst.Primary = src.Primary
	}
	if src.Secondary != "" {
		dst.Secondary = src.Secondary
	}
	if src.TextDefault != "" {
		dst.TextDefault = src.TextDefault
	}
	// Accents replace wholesale, never element-wise.
	if len(src.Accents) > 0 {
		dst.Accents = append([]string(nil), src.Accents...)
	}
	if src.Neutrals != nil {
		if src.Neutrals.Light != "" {
			dst.Neutrals.Light = src.Neutrals.Light
		}
		if src.Neutrals.Dark != "" {
			dst.Neutrals.Dark = src.Neutrals.Dark
		}
		if src.Neutrals.Muted != "" {
			dst.Neutrals.Muted = src.Neutrals.Muted
		}
	}
}

func mergeFonts(dst *Fonts, src *PartialFonts) {
	if src == nil {
		return
	}
	mergeFont(&dst.Heading, src.Heading)
	mergeFont(&dst.Body, src.Body)
	mergeFont(&dst.Mono, src.Mono)
}

func mergeFont(dst *Font, src *PartialFont) {
	if src == nil {
		return
	}
	if src.Family != "" {
		dst.Family = src.Family
	}
	if src.Weight != "" {
		dst.Weight = src.Weight
	}
	if src.Style != "" {
		dst.Style = src.Style
	}
}

func mergeAssets(dst *Assets, src *PartialAssets) {
	if src == nil {
		return
	}
	if src.LogoURL != "" {
		dst.LogoURL = src.LogoURL
	}
	if src.LogoDarkURL != "" {
		dst.LogoDarkURL = src.LogoDarkURL
	}
	if src.IconURL != "" {
		dst.IconURL = src.IconURL
	}
}

// ensureCopy fills every narrative field individually. Copy gets its own pass
// because a half-empty copy block is the most common analyzer output and every
// single field must survive into the theme.
func ensureCopy(dst *Copy, src *PartialCopy) {
	if src == nil {
		return
	}
	if src.BrandName != "" {
		dst.BrandName = src.BrandName
	}
	if src.Tagline != "" {
		dst.Tagline = src.Tagline
	}
	if src.Mission != "" {
		dst.Mission = src.Mission
	}
	if src.Voice != "" {
		dst.Voice = src.Voice
	}
	if src.HeroHeadline != "" {
		dst.HeroHeadline = src.HeroHeadline
	}
	if src.HeroSubheadline != "" {
		dst.HeroSubheadline = src.HeroSubheadline
	}
	if src.CallToAction != "" {
		dst.CallToAction = src.CallToAction
	}
}
