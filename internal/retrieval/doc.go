// Package retrieval is the single call-through between the window (or CLI)
// and the YouTube client.
//
// Service turns user input into a video ID, lists or fetches captions, renders
// them in the chosen format, and optionally saves the result. Every failure
// comes back as a *Problem carrying an error kind and the message to show the
// user verbatim. Nothing is retried and nothing is cached between calls.
package retrieval
