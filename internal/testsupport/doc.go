// Package testsupport holds shared helpers for ytscribe tests: temp-dir
// backed configurations, TOML config files for CLI runs, and sized fixture
// files.
package testsupport
