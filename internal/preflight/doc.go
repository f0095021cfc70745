// Package preflight provides readiness checks for the filesystem paths and
// network access ytscribe depends on.
//
// The CLI "ytscribe status" command runs RunAll and renders each Result. The
// checks never modify anything: a missing directory is reported, not created.
package preflight
