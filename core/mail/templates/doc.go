// Package templates renders file-based email templates with a data map.
// HTML templates get contextual autoescaping; rendering is strict, so an
// unresolved variable fails the call instead of producing partial output.
// Builtin() exposes the embedded welcome and password-reset templates.
package templates
