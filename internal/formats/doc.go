// Package formats renders transcripts as JSON, a pretty-printed dump, plain
// text, WebVTT, or SRT.
package formats
