package confloader

import (
	"fmt"
	"maps"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "FOTEAM_"

// levelSeparator splits env variable names into key levels.
const levelSeparator = "__"

// Loader resolves configuration from a YAML file, the environment and
// explicit overrides, in that order. A Loader can be reused: every Load
// starts from an empty koanf instance, which is what config reload needs.
type Loader struct {
	envPrefix string
	filePath  string
	overrides map[string]any
	sources   []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file. It must exist when set.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides adds values applied after the environment. Keys may be
// dotted ("session.dir") or nested maps.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		if l.overrides == nil {
			l.overrides = make(map[string]any, len(values))
		}
		maps.Copy(l.overrides, values)
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load unmarshals the layered sources into target. Fields no source sets
// keep their current values, so target is normally pre-filled with
// defaults. Durations accept Go duration strings ("30m").
func (l *Loader) Load(target any) error {
	k := koanf.New(".")
	l.sources = l.sources[:0]

	if l.filePath != "" {
		if err := k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
		l.sources = append(l.sources, "file:"+l.filePath)
	}

	if err := k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	l.sources = append(l.sources, "env:"+l.envPrefix)

	if len(l.overrides) > 0 {
		if err := k.Load(mapProvider(l.overrides), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
		l.sources = append(l.sources, "overrides")
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Sources lists the sources applied by the last Load, in order.
func (l *Loader) Sources() []string {
	return append([]string(nil), l.sources...)
}

// envKey maps FOTEAM_SESSION__GC_MAX_LIFETIME to session.gc_max_lifetime.
func (l *Loader) envKey(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, l.envPrefix))
	return strings.ReplaceAll(name, levelSeparator, ".")
}
