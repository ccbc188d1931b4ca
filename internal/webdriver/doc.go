// Package webdriver is a minimal W3C WebDriver client covering the commands
// the UI-driven fallback strategies need: session lifecycle, navigation,
// element lookup with a bounded readiness wait, clicks, text, and key input.
// It talks plain HTTP and JSON to a locally running driver such as
// chromedriver; no browser-specific logic leaks past this package.
package webdriver
