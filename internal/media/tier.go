package media

import (
	"strings"

	"mediadocs/internal/apperror"
)

// Tier is the caller-facing compression level.
type Tier string

const (
	TierAuto   Tier = "auto"
	TierLight  Tier = "light"
	TierMedium Tier = "medium"
	TierStrong Tier = "strong"
)

// PDFProfile is what a Tier means to Ghostscript.
type PDFProfile struct {
	Settings    string // -dPDFSETTINGS value
	DPI         int
	JPEGQuality int
}

var imageQuality = map[Tier]int{
	TierAuto:   70,
	TierLight:  85,
	TierMedium: 60,
	TierStrong: 40,
}

var pdfProfiles = map[Tier]PDFProfile{
	TierAuto:   {Settings: "/ebook", DPI: 150, JPEGQuality: 70},
	TierLight:  {Settings: "/printer", DPI: 300, JPEGQuality: 85},
	TierMedium: {Settings: "/ebook", DPI: 150, JPEGQuality: 60},
	TierStrong: {Settings: "/screen", DPI: 72, JPEGQuality: 40},
}

// ParseTier accepts the four tier names case-insensitively. An empty string
// is not a tier; callers decide whether compression was requested at all.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := imageQuality[t]; !ok {
		return "", apperror.ErrUnsupportedCompressionOption
	}
	return t, nil
}

// ImageQuality is the JPEG-style 1..100 quality for t, defaulting to auto.
func (t Tier) ImageQuality() int {
	if q, ok := imageQuality[t]; ok {
		return q
	}
	return imageQuality[TierAuto]
}

// PDFProfile returns the Ghostscript parameters for t, defaulting to auto.
func (t Tier) PDFProfile() PDFProfile {
	if p, ok := pdfProfiles[t]; ok {
		return p
	}
	return pdfProfiles[TierAuto]
}
