package background

import "strings"

// Kind discriminates catalog descriptors.
type Kind string

const (
	KindColor    Kind = "color"
	KindGradient Kind = "gradient"
	KindPattern  Kind = "pattern"
	KindPhoto    Kind = "photo"
)

// IsValid reports whether k is a known descriptor kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindColor, KindGradient, KindPattern, KindPhoto:
		return true
	default:
		return false
	}
}

// Descriptor is a catalog background. Value is a color hex for colors, a CSS
// background expression for gradients and patterns, and an image URL for
// photos. Dark marks backgrounds that need light text.
type Descriptor struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Dark  bool   `json:"dark"`
}

// Default is the background used on first run.
var Default = Descriptor{Kind: KindColor, Name: "White", Value: "#FFFFFF"}

var colors = []Descriptor{
	// vibrant
	{KindColor, "Coral", "#FF6B6B", false},
	{KindColor, "Orange", "#FF9F43", false},
	{KindColor, "Sunflower", "#FECA57", false},
	{KindColor, "Lime", "#5CD85A", false},
	{KindColor, "Teal", "#00D2D3", false},
	{KindColor, "Sky", "#54A0FF", false},
	{KindColor, "Purple", "#9B59B6", true},
	{KindColor, "Pink", "#FF6B9D", false},
	// pastel
	{KindColor, "Blush", "#FFE4E8", false},
	{KindColor, "Peach", "#FFE5D0", false},
	{KindColor, "Cream", "#FFF8E7", false},
	{KindColor, "Mint", "#D0F5E8", false},
	{KindColor, "Ice", "#E0F7FA", false},
	{KindColor, "Lavender", "#E8E0F0", false},
	{KindColor, "Periwinkle", "#D4E4FF", false},
	{KindColor, "Rose", "#FCE4EC", false},
	// neutrals and darks
	{KindColor, "White", "#FFFFFF", false},
	{KindColor, "Snow", "#F8F9FA", false},
	{KindColor, "Silver", "#E9ECEF", false},
	{KindColor, "Slate", "#64748B", true},
	{KindColor, "Charcoal", "#374151", true},
	{KindColor, "Navy", "#1E3A5F", true},
	{KindColor, "Midnight", "#1d1d1f", true},
	{KindColor, "Black", "#000000", true},
}

var gradients = []Descriptor{
	{KindGradient, "Sunset", "linear-gradient(135deg, #FF6B6B 0%, #FECA57 100%)", false},
	{KindGradient, "Ocean", "linear-gradient(135deg, #54A0FF 0%, #00D2D3 100%)", false},
	{KindGradient, "Meadow", "linear-gradient(135deg, #D0F5E8 0%, #5CD85A 100%)", false},
	{KindGradient, "Candy", "linear-gradient(135deg, #FF6B9D 0%, #E8E0F0 100%)", false},
	{KindGradient, "Dusk", "linear-gradient(135deg, #1E3A5F 0%, #9B59B6 100%)", true},
	{KindGradient, "Night", "linear-gradient(180deg, #1d1d1f 0%, #374151 100%)", true},
}

var patterns = []Descriptor{
	{KindPattern, "Dots", "radial-gradient(#d2d2d7 1px, transparent 1px) 0 0 / 16px 16px, #FFFFFF", false},
	{KindPattern, "Grid", "linear-gradient(#E9ECEF 1px, transparent 1px) 0 0 / 24px 24px, linear-gradient(90deg, #E9ECEF 1px, #F8F9FA 1px) 0 0 / 24px 24px", false},
	{KindPattern, "Stripes", "repeating-linear-gradient(45deg, #FFF8E7 0 12px, #FFE5D0 12px 24px)", false},
	{KindPattern, "Blueprint", "linear-gradient(#2d4a6f 1px, transparent 1px) 0 0 / 20px 20px, linear-gradient(90deg, #2d4a6f 1px, #1E3A5F 1px) 0 0 / 20px 20px", true},
}

var photos = []Descriptor{
	{KindPhoto, "Mountains", "https://images.unsplash.com/photo-1464822759023-fed622ff2c3b", true},
	{KindPhoto, "Beach", "https://images.unsplash.com/photo-1507525428034-b723cf961d3e", false},
	{KindPhoto, "Forest", "https://images.unsplash.com/photo-1448375240586-882707db888b", true},
	{KindPhoto, "City", "https://images.unsplash.com/photo-1477959858617-67f85cf4f1df", true},
}

// Catalog returns the built-in descriptors of the given kind.
func Catalog(kind Kind) []Descriptor {
	var src []Descriptor
	switch kind {
	case KindColor:
		src = colors
	case KindGradient:
		src = gradients
	case KindPattern:
		src = patterns
	case KindPhoto:
		src = photos
	}
	out := make([]Descriptor, len(src))
	copy(out, src)
	return out
}

// All returns every built-in descriptor grouped by kind.
func All() []Descriptor {
	var out []Descriptor
	for _, k := range []Kind{KindColor, KindGradient, KindPattern, KindPhoto} {
		out = append(out, Catalog(k)...)
	}
	return out
}

// Lookup finds a catalog entry by kind and name or value, ignoring case.
func Lookup(kind Kind, ref string) (Descriptor, bool) {
	for _, d := range Catalog(kind) {
		if strings.EqualFold(d.Name, ref) || strings.EqualFold(d.Value, ref) {
			return d, true
		}
	}
	return Descriptor{}, false
}
