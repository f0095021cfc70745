package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytscribe/internal/export"
	"ytscribe/internal/formats"
	"ytscribe/internal/logging"
	"ytscribe/internal/youtube"
)

// Source is the transcript-fetching layer. *youtube.Client implements it.
type Source interface {
	ListTranscripts(ctx context.Context, videoID string) (*youtube.TrackList, error)
	FetchTranscript(ctx context.Context, track youtube.Track, translateTo string) (*youtube.Transcript, error)
	VideoTitle(ctx context.Context, videoID string) (string, error)
}

// Options are the defaults applied when a request leaves a field empty.
type Options struct {
	OutputDir string
	Languages []string
	Format    string
	Save      bool
}

// Service runs check and obtain requests against a Source.
type Service struct {
	source Source
	opts   Options
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(source Source, opts Options, logger *slog.Logger) *Service {
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"en"}
	}
	if strings.TrimSpace(opts.Format) == "" {
		opts.Format = "text"
	}
	return &Service{
		source: source,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "retrieval"),
	}
}

// TrackView describes one caption track in a listing.
type TrackView struct {
	Label          string `json:"label"`
	Language       string `json:"language"`
	LanguageCode   string `json:"language_code"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// Listing is the result of Check.
type Listing struct {
	VideoID              string                        `json:"video_id"`
	Tracks               []TrackView                   `json:"tracks"`
	TranslationLanguages []youtube.TranslationLanguage `json:"translation_languages"`
	CorrelationID        string                        `json:"correlation_id"`
}

// Request selects what Obtain fetches. Empty fields fall back to Options.
type Request struct {
	Input string `json:"input"`
	// LanguageCode picks a specific track; with Generated it disambiguates a
	// manual and an auto-generated track in the same language.
	LanguageCode string `json:"language_code,omitempty"`
	Generated    bool   `json:"generated,omitempty"`
	// Languages overrides the configured preference order when no track is picked.
	Languages   []string `json:"languages,omitempty"`
	TranslateTo string   `json:"translate_to,omitempty"`
	Format      string   `json:"format,omitempty"`
	Save        *bool    `json:"save,omitempty"`
}

// Result is the outcome of Obtain.
type Result struct {
	VideoID       string  `json:"video_id"`
	Title         string  `json:"title"`
	Language      string  `json:"language"`
	LanguageCode  string  `json:"language_code"`
	IsGenerated   bool    `json:"is_generated"`
	TranslatedTo  string  `json:"translated_to,omitempty"`
	Format        string  `json:"format"`
	FileName      string  `json:"file_name"`
	Entries       int     `json:"entries"`
	DurationSec   float64 `json:"duration_seconds"`
	Content       string  `json:"content"`
	SavedPath     string  `json:"saved_path,omitempty"`
	CorrelationID string  `json:"correlation_id"`
}

// Check lists the caption tracks of the video named by input.
func (s *Service) Check(ctx context.Context, input string) (*Listing, error) {
	ctx, correlationID := withCorrelation(ctx)

	videoID, err := youtube.ParseVideoID(input)
	if err != nil {
		return nil, s.fail(ctx, "check", correlationID, err)
	}
	ctx = logging.WithVideoID(ctx, videoID)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("checking available transcripts")

	list, err := s.source.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, s.fail(ctx, "check", correlationID, err)
	}

	listing := &Listing{
		VideoID:              videoID,
		Tracks:               make([]TrackView, 0, len(list.Tracks)),
		TranslationLanguages: list.TranslationLanguages,
		CorrelationID:        correlationID,
	}
	if listing.TranslationLanguages == nil {
		listing.TranslationLanguages = []youtube.TranslationLanguage{}
	}
	for _, track := range list.Tracks {
		listing.Tracks = append(listing.Tracks, TrackView{
			Label:          track.Label(),
			Language:       track.Language,
			LanguageCode:   track.LanguageCode,
			IsGenerated:    track.IsGenerated,
			IsTranslatable: track.IsTranslatable,
		})
	}
	logger.Info("transcripts available",
		logging.Int("tracks", len(listing.Tracks)),
		logging.Int("manual", len(list.Manual())),
		logging.Int("generated", len(list.Generated())),
		logging.Int("translation_languages", len(listing.TranslationLanguages)),
	)
	return listing, nil
}

// Obtain fetches, formats, and optionally saves one transcript.
func (s *Service) Obtain(ctx context.Context, req Request) (*Result, error) {
	ctx, correlationID := withCorrelation(ctx)
	started := time.Now()

	formatName := req.Format
	if strings.TrimSpace(formatName) == "" {
		formatName = s.opts.Format
	}
	format, err := formats.Lookup(formatName)
	if err != nil {
		return nil, s.fail(ctx, "obtain", correlationID, invalidRequest("unknown output format %q", formatName))
	}

	videoID, err := youtube.ParseVideoID(req.Input)
	if err != nil {
		return nil, s.fail(ctx, "obtain", correlationID, err)
	}
	ctx = logging.WithVideoID(ctx, videoID)
	logger := logging.WithContext(ctx, s.logger)

	list, err := s.source.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, s.fail(ctx, "obtain", correlationID, err)
	}
	track, err := s.chooseTrack(list, req)
	if err != nil {
		return nil, s.fail(ctx, "obtain", correlationID, err)
	}
	transcript, err := s.source.FetchTranscript(ctx, track, strings.TrimSpace(req.TranslateTo))
	if err != nil {
		return nil, s.fail(ctx, "obtain", correlationID, err)
	}
	content, err := format.Render(transcript)
	if err != nil {
		return nil, s.fail(ctx, "obtain", correlationID, err)
	}

	title := s.title(ctx, videoID)
	result := &Result{
		VideoID:       videoID,
		Title:         title,
		Language:      transcript.Language,
		LanguageCode:  transcript.LanguageCode,
		IsGenerated:   transcript.IsGenerated,
		TranslatedTo:  strings.TrimSpace(req.TranslateTo),
		Format:        format.Name,
		FileName:      export.FileName(title, videoID, format.Extension),
		Entries:       len(transcript.Entries),
		DurationSec:   transcriptLength(transcript),
		Content:       content,
		CorrelationID: correlationID,
	}

	save := s.opts.Save
	if req.Save != nil {
		save = *req.Save
	}
	if save {
		path, err := export.Save(s.opts.OutputDir, result.FileName, content)
		if err != nil {
			return nil, s.fail(ctx, "obtain", correlationID, &Problem{Kind: KindSaveFailed, Message: err.Error(), Err: err})
		}
		result.SavedPath = path
	}

	logger.Info("transcript obtained",
		logging.String("language_code", result.LanguageCode),
		logging.Bool("generated", result.IsGenerated),
		logging.String("format", format.Key),
		logging.Int("entries", result.Entries),
		logging.String("saved_path", result.SavedPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (s *Service) chooseTrack(list *youtube.TrackList, req Request) (youtube.Track, error) {
	code := strings.TrimSpace(req.LanguageCode)
	if code == "" {
		if len(req.Languages) > 0 {
			return list.Find(req.Languages...)
		}
		return list.Find(s.opts.Languages...)
	}
	for _, track := range list.Tracks {
		if strings.EqualFold(track.LanguageCode, code) && track.IsGenerated == req.Generated {
			return track, nil
		}
	}
	// Only the kind of track differs from what was asked for; fall back to
	// whatever exists for the language.
	return list.Find(code)
}

// title never fails the request; the video ID stands in when the lookup does.
func (s *Service) title(ctx context.Context, videoID string) string {
	title, err := s.source.VideoTitle(ctx, videoID)
	if err != nil || strings.TrimSpace(title) == "" {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger),
			"video title lookup failed; using video id", "title_lookup_failed",
			"saved file is named after the video id",
			logging.Error(err),
		)
		return videoID
	}
	return title
}

func (s *Service) fail(ctx context.Context, op, correlationID string, err error) *Problem {
	problem := AsProblem(err)
	problem.CorrelationID = correlationID
	logging.WithContext(ctx, s.logger).Warn(op+" failed",
		logging.String("kind", problem.Kind),
		logging.String(logging.FieldEventType, op+"_failed"),
		logging.String("message", problem.Message),
	)
	return problem
}

func withCorrelation(ctx context.Context) (context.Context, string) {
	if id, ok := logging.CorrelationID(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return logging.WithCorrelationID(ctx, id), id
}

func transcriptLength(t *youtube.Transcript) float64 {
	if len(t.Entries) == 0 {
		return 0
	}
	last := t.Entries[len(t.Entries)-1]
	return last.Start + last.Duration
}
