// Package engine is the composition root that turns configuration into a ready
// Gemini backend. Frontends (the CLI and the MCP server) build an Engine and
// call Run or Generate; they never import the provider packages directly.
package engine
