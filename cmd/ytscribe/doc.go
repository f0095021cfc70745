// Package main hosts the ytscribe entrypoint and command graph.
//
// Run without arguments, ytscribe opens the transcript window and exits once
// it is closed. The subcommands expose the same retrieval service to the
// terminal (fetch, list), report readiness (status), and scaffold the
// configuration file (config init, config validate).
//
// Keep this package lean: behaviour belongs in the internal packages, and
// commands here only resolve configuration, wire dependencies, and render.
package main
