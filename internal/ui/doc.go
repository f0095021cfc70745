// Package ui serves the transcript window.
//
// The window is a single page served on a loopback address and opened in the
// user's browser. The page talks to a small JSON API guarded by a per-process
// session token; every request goes straight to the retrieval service. The
// page reports liveness with heartbeats and a close beacon, and Run returns
// once the window is gone so the process can exit.
package ui
