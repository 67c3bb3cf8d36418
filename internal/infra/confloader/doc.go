// Package confloader loads configuration from layered sources.
//
// It uses koanf as the underlying library. Sources are applied in order,
// later ones overriding earlier ones:
//
//  1. Defaults already present in the target struct
//  2. YAML configuration file
//  3. Environment variables (FOTEAM_ prefix)
//  4. Explicit maps, typically built from command-line flags
//
// Environment variable names map to keys by lowercasing and turning a
// double underscore into a level separator, so single underscores can
// appear inside key names:
//
//	FOTEAM_SESSION__GC_MAX_LIFETIME=48h  ->  session.gc_max_lifetime
//	FOTEAM_SERVER__HTTP__ADDRESS=:8080   ->  server.http.address
//
// Watcher reports changes to the configuration file for hot reload.
package confloader
