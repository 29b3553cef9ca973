package extract

// PageMetadata is what the scraper reports about the captured page.
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FinalURL    string `json:"finalUrl,omitempty"`
}

// StyleSample is the style probe the scraper runs against the live page.
type StyleSample struct {
	Palette      []string `json:"palette"`
	FontFamilies []string `json:"fontFamilies"`
}

// RawBrandData is the scraper's output: page capture plus detected styles.
// The analyzer collaborator turns this into a partial brand theme.
type RawBrandData struct {
	Metadata    PageMetadata `json:"metadata"`
	HTML        string       `json:"html"`
	Screenshots []string     `json:"screenshots,omitempty"` // base64 PNG captures
	StyleSample StyleSample  `json:"styleSample"`
}
