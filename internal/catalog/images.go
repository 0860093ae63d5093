package catalog

import "strings"

// ImageInput accepts the three shapes clients send image references in.
type ImageInput struct {
	Images []string      `json:"images"`
	Legacy *LegacyImages `json:"Images"`
	Image1 string        `json:"image1"`
	Image2 string        `json:"image2"`
}

type LegacyImages struct {
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
}

// NormalizeImages picks the first non-empty representation: the images
// array, then the nested Images object, then flat image1/image2. Blank
// entries are dropped and the result is never nil.
func NormalizeImages(in ImageInput) []string {
	if images := compact(in.Images); len(images) > 0 {
		return images
	}
	if in.Legacy != nil {
		if images := compact([]string{in.Legacy.Image1, in.Legacy.Image2}); len(images) > 0 {
			return images
		}
	}
	return compact([]string{in.Image1, in.Image2})
}

// Provided reports whether the client sent any image field at all, so an
// explicit empty list can be told apart from an omitted one.
func (in ImageInput) Provided() bool {
	return in.Images != nil || in.Legacy != nil || in.Image1 != "" || in.Image2 != ""
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
