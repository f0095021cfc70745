// Package export writes obtained transcripts to disk under names derived from
// the video title.
package export
