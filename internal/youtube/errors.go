package youtube

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a transcript could not be retrieved.
type Kind string

const (
	KindInvalidVideoID         Kind = "invalid_video_id"
	KindVideoUnavailable       Kind = "video_unavailable"
	KindTranscriptsDisabled    Kind = "transcripts_disabled"
	KindNoTranscriptFound      Kind = "no_transcript_found"
	KindNotTranslatable        Kind = "not_translatable"
	KindTranslationUnavailable Kind = "translation_unavailable"
	KindRequestBlocked         Kind = "request_blocked"
	KindAgeRestricted          Kind = "age_restricted"
	KindVideoUnplayable        Kind = "video_unplayable"
	KindPoTokenRequired        Kind = "po_token_required"
	KindUnknown                Kind = "unknown"
)

var kindCauses = map[Kind]string{
	KindInvalidVideoID:         "no video ID or URL was given",
	KindVideoUnavailable:       "the video is no longer available",
	KindTranscriptsDisabled:    "subtitles are disabled for this video",
	KindNoTranscriptFound:      "no transcript was found for any of the requested language codes",
	KindNotTranslatable:        "the requested transcript is not translatable",
	KindTranslationUnavailable: "the requested translation language is not available",
	KindRequestBlocked:         "YouTube is blocking requests from your IP address",
	KindAgeRestricted:          "the video is age-restricted and requires a signed-in account",
	KindVideoUnplayable:        "the video is unplayable",
	KindPoTokenRequired:        "the requested transcript can only be fetched by a browser session (PoToken)",
	KindUnknown:                "YouTube returned a response that could not be understood",
}

// Cause returns the human readable reason associated with k.
func (k Kind) Cause() string {
	if cause, ok := kindCauses[k]; ok {
		return cause
	}
	return kindCauses[KindUnknown]
}

// Error describes a failed transcript operation.
type Error struct {
	Kind    Kind
	VideoID string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.VideoID != "" {
		fmt.Fprintf(&b, "could not retrieve a transcript for video %s: ", e.VideoID)
	} else {
		b.WriteString("could not retrieve a transcript: ")
	}
	b.WriteString(e.Kind.Cause())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err. Errors that did not originate in this
// package report KindUnknown.
func KindOf(err error) Kind {
	var ytErr *Error
	if errors.As(err, &ytErr) {
		return ytErr.Kind
	}
	return KindUnknown
}

func newError(kind Kind, videoID, detail string) *Error {
	return &Error{Kind: kind, VideoID: videoID, Detail: detail}
}

func wrapError(kind Kind, videoID string, err error) *Error {
	return &Error{Kind: kind, VideoID: videoID, Err: err}
}
