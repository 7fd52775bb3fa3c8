package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/kv"
)

// LoadBackground reads the background selection. When the record is absent
// the legacy bgColor/bgImage keys are consulted; a later SaveBackground
// removes them.
func (c *Codec) LoadBackground(ctx context.Context) (background.State, error) {
	st, err := c.background.Get(ctx)
	if errors.Is(err, kv.ErrNotFound) {
		return c.loadLegacyBackground(ctx)
	}
	if err != nil {
		return background.State{}, err
	}

	if !st.Descriptor.Kind.IsValid() || st.Descriptor.Value == "" {
		return background.State{}, &kv.DecodeError{
			Key: KeyBackground,
			Err: fmt.Errorf("invalid descriptor %+v", st.Descriptor),
		}
	}

	if st.UploadedImage != nil && !background.IsImageDataURI(*st.UploadedImage) {
		c.logger.Warn().Str("key", KeyBackground).Msg("dropping uploaded image that is not an image data URI")
		st.UploadedImage = nil
	}

	return st, nil
}

// SaveBackground writes the background selection and clears legacy keys
// left over from a migrated layout.
func (c *Codec) SaveBackground(ctx context.Context, st background.State) error {
	if err := c.background.Set(ctx, st); err != nil {
		return fmt.Errorf("save background: %w", err)
	}

	c.mu.Lock()
	pending := c.legacyPending
	c.mu.Unlock()
	if !pending {
		return nil
	}

	for _, key := range []string{LegacyKeyColor, LegacyKeyImage} {
		if err := c.store.Delete(ctx, key); err != nil {
			// The background record now wins over legacy keys, so a failed
			// cleanup is harmless.
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to remove legacy background key")
		}
	}

	c.mu.Lock()
	c.legacyPending = false
	c.mu.Unlock()
	return nil
}

// LegacyPending reports whether the last LoadBackground found legacy keys
// that have not been rewritten yet.
func (c *Codec) LegacyPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.legacyPending
}

func (c *Codec) loadLegacyBackground(ctx context.Context) (background.State, error) {
	st := background.State{Descriptor: background.Default}
	found := false

	color, err := c.store.Get(ctx, LegacyKeyColor)
	switch {
	case err == nil:
		found = true
		d, derr := background.ColorDescriptor(color)
		if derr != nil {
			c.logger.Warn().Err(derr).Str("key", LegacyKeyColor).Msg("ignoring legacy background color")
		} else {
			st.Descriptor = d
		}
	case !errors.Is(err, kv.ErrNotFound):
		return background.State{}, err
	}

	img, err := c.store.Get(ctx, LegacyKeyImage)
	switch {
	case err == nil:
		found = true
		if background.IsImageDataURI(img) {
			st.UploadedImage = &img
		} else {
			c.logger.Warn().Str("key", LegacyKeyImage).Msg("ignoring legacy background image")
		}
	case !errors.Is(err, kv.ErrNotFound):
		return background.State{}, err
	}

	if found {
		c.logger.Info().Msg("migrating legacy background keys")
	}

	c.mu.Lock()
	c.legacyPending = found
	c.mu.Unlock()

	return st, nil
}
