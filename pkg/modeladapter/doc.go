// Package modeladapter defines the interface and shared plumbing for model
// backends.
//
// It contains:
//   - [Generator] interface with the [Request] and [Response] types every backend speaks
//   - embeddable [ModelAdapter] base struct with HTTP helpers and auth
//   - [github.com/germanamz/minirag/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// This package contains no backend-specific code. Concrete backends live in
// the packages under pkg/providers.
package modeladapter
