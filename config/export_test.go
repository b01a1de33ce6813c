package config

// ResolveToken exports resolveToken for testing.
var ResolveToken = resolveToken //nolint:gochecknoglobals // test export

// Validate exports validate for testing.
var Validate = validate //nolint:gochecknoglobals // test export

// Defaults exports defaults for testing.
var Defaults = defaults //nolint:gochecknoglobals // test export
