// Package youtube lists and downloads YouTube caption tracks.
//
// A Client scrapes the watch page for the innertube API key, asks the player
// endpoint for the caption track list, and downloads a chosen track as
// timedtext XML. Failures are reported as *Error values whose Kind callers can
// switch on without matching message text.
package youtube
