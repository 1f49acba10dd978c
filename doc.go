// Package bridge wires the auth engine into an application's routing layer.
//
// The package is deliberately thin: it resolves configuration from the
// environment, merges it with user-supplied options, and exposes method
// handlers that claim the configured path prefix and delegate everything
// under it to the engine.
//
// Configuration:
//   - DefineConfig merges user options with environment defaults. Secrets
//     come from AUTH_SECRET when not set explicitly; trust-host resolution
//     falls back to platform markers and the environment name so local
//     development works without flags.
//   - The loader subpackage reads an auth.config file (YAML, JSON, or TOML)
//     so configuration can live next to the app instead of in code.
//
// Request handling:
//   - BuildHandlers produces GET/POST handlers that answer only for paths
//     under the configured prefix. Anything else falls through to the next
//     route, so the handlers can be mounted as catch-all middleware.
//   - GetSession reads the session cookie and returns the session or nil.
//     Missing, malformed, and expired cookies are indistinguishable to the
//     caller.
package bridge
