// Package background holds the background catalogs and the selection state
// that decides what the task list is drawn over.
package background

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// darkLightness is the CIE-Lab lightness below which a color needs light text.
const darkLightness = 0.5

// State is the persisted form of a Selector. A nil UploadedImage means the
// descriptor is the active background.
type State struct {
	Descriptor    Descriptor `json:"backgroundDescriptor"`
	UploadedImage *string    `json:"uploadedImage,omitempty"`
}

// Selector tracks the active background: a catalog descriptor, optionally
// covered by an uploaded image. Removing the image reveals the descriptor
// again.
type Selector struct {
	descriptor Descriptor
	image      *string
}

// NewSelector returns a selector showing Default.
func NewSelector() *Selector {
	return &Selector{descriptor: Default}
}

// Restore replaces the selector state wholesale.
func (s *Selector) Restore(st State) {
	s.descriptor = st.Descriptor
	s.image = nil
	if st.UploadedImage != nil && *st.UploadedImage != "" {
		img := *st.UploadedImage
		s.image = &img
	}
}

// State returns the persisted form of the selector.
func (s *Selector) State() State {
	st := State{Descriptor: s.descriptor}
	if s.image != nil {
		img := *s.image
		st.UploadedImage = &img
	}
	return st
}

// Select makes d the active background and clears any uploaded image.
// Descriptors of an unknown kind are ignored.
func (s *Selector) Select(d Descriptor) bool {
	if !d.Kind.IsValid() || d.Value == "" {
		return false
	}
	s.descriptor = d
	s.image = nil
	return true
}

// SelectColor selects an arbitrary #RRGGBB color. Catalog colors keep their
// catalog entry; other colors get a dark flag computed from lightness.
func (s *Selector) SelectColor(hex string) (Descriptor, bool) {
	d, err := ColorDescriptor(hex)
	if err != nil {
		return Descriptor{}, false
	}
	return d, s.Select(d)
}

// UploadImage covers the current descriptor with an image given as a data
// URI. The descriptor is kept underneath.
func (s *Selector) UploadImage(dataURI string) bool {
	if !IsImageDataURI(dataURI) {
		return false
	}
	s.image = &dataURI
	return true
}

// RemoveImage clears the uploaded image.
func (s *Selector) RemoveImage() bool {
	if s.image == nil {
		return false
	}
	s.image = nil
	return true
}

// Descriptor returns the catalog descriptor, whether or not it is covered.
func (s *Selector) Descriptor() Descriptor {
	return s.descriptor
}

// Image returns the uploaded image, if any.
func (s *Selector) Image() (string, bool) {
	if s.image == nil {
		return "", false
	}
	return *s.image, true
}

// Dark reports whether text over the active background should be light.
// Uploaded images are always treated as dark.
func (s *Selector) Dark() bool {
	return s.State().Dark()
}

// Dark reports the effective dark flag of st.
func (st State) Dark() bool {
	if st.UploadedImage != nil {
		return true
	}
	return st.Descriptor.Dark
}

// ColorDescriptor builds a color descriptor for hex, reusing the catalog
// entry when there is one.
func ColorDescriptor(hex string) (Descriptor, error) {
	if d, ok := Lookup(KindColor, hex); ok {
		return d, nil
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return Descriptor{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}

	return Descriptor{
		Kind:  KindColor,
		Name:  "Custom",
		Value: strings.ToUpper(c.Hex()),
		Dark:  IsDarkColor(c),
	}, nil
}

// IsDarkColor reports whether c needs light text on top of it.
func IsDarkColor(c colorful.Color) bool {
	l, _, _ := c.Lab()
	return l < darkLightness
}

// DataURI encodes raw image bytes as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImageDataURI reports whether s looks like a base64 image data URI.
func IsImageDataURI(s string) bool {
	rest, ok := strings.CutPrefix(s, "data:image/")
	if !ok {
		return false
	}
	_, payload, ok := strings.Cut(rest, ";base64,")
	return ok && payload != ""
}
