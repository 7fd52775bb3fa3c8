package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentKey is the field that names the subsystem emitting an event.
const ComponentKey = "cmp"

// Component derives a logger from the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return Sub(log.Logger, name)
}

// Sub tags an injected logger with a component name. Packages that take a
// logger through their options use this so tests can pass zerolog.Nop().
func Sub(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str(ComponentKey, name).Logger()
}
