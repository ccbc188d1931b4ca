// Package browser is the UI-driven fallback surface: enumeration,
// retrieval, and deletion expressed as simulated interactions against the
// rendered folder page. It exists for folders that expose no usable HTTP
// surface and for privileged operations like deletion at the source. All
// element lookup, clicking, and waiting is encapsulated here; callers see
// the same strategy-shaped contracts the HTTP surfaces provide.
package browser
