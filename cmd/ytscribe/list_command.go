package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ytscribe/internal/retrieval"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list <url|video-id>",
		Short: "List available transcripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := ctx.service()
			if err != nil {
				return err
			}
			listing, err := svc.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, listing)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderListing(listing))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the listing as JSON")
	return cmd
}

func renderListing(listing *retrieval.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video %s\n\n", listing.VideoID)

	tracks := tableSpec{
		title:   fmt.Sprintf("Transcripts (%d)", len(listing.Tracks)),
		headers: []string{"#", "Code", "Language", "Type", "Translatable"},
		aligns:  []columnAlignment{alignRight},
	}
	for i, track := range listing.Tracks {
		kind := "manual"
		if track.IsGenerated {
			kind = "auto-generated"
		}
		tracks.rows = append(tracks.rows, []string{strconv.Itoa(i + 1), track.LanguageCode, track.Language, kind, yesNo(track.IsTranslatable)})
	}
	b.WriteString(tracks.render())
	b.WriteString("\n")

	if len(listing.TranslationLanguages) == 0 {
		b.WriteString("\nNo translation languages available\n")
		return b.String()
	}
	translations := tableSpec{
		title:   fmt.Sprintf("Translation languages (%d)", len(listing.TranslationLanguages)),
		headers: []string{"Code", "Language"},
	}
	for _, lang := range listing.TranslationLanguages {
		translations.rows = append(translations.rows, []string{lang.LanguageCode, lang.Language})
	}
	b.WriteString("\n")
	b.WriteString(translations.render())
	b.WriteString("\n")
	return b.String()
}
