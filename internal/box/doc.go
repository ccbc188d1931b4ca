// Package box talks to the shared-folder service through its unstable
// surfaces: the header-authorized metadata endpoint, embedded page data, and
// raw page markup for discovery; templated static and API content URLs for
// retrieval. Every surface may silently fail or return partial data, so both
// enumeration and retrieval are ordered strategy chains where a single
// attempt's fault never escapes the chain.
package box
