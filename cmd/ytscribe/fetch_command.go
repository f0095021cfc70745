package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/formats"
	"ytscribe/internal/language"
	"ytscribe/internal/retrieval"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		languages []string
		generated bool
		translate string
		format    string
		outputDir string
		noSave    bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <url|video-id>",
		Short: "Fetch a transcript and print it",
		Long: `Fetch a transcript, print it to stdout, and save it unless --no-save is given.

Languages are tried in order; a manually created track wins over an
auto-generated one for the same language.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dir := strings.TrimSpace(outputDir); dir != "" {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Paths.OutputDir = expanded
			}
			svc, _, _, err := ctx.service()
			if err != nil {
				return err
			}

			req := retrieval.Request{
				Input:       args[0],
				Languages:   language.NormalizeList(languages),
				TranslateTo: language.Normalize(translate),
				Format:      format,
			}
			if generated {
				if len(req.Languages) == 0 {
					return fmt.Errorf("--generated requires --lang")
				}
				req.LanguageCode = req.Languages[0]
				req.Generated = true
			}
			if noSave {
				save := false
				req.Save = &save
			}

			result, err := svc.Obtain(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, result.Content)
			if !strings.HasSuffix(result.Content, "\n") {
				fmt.Fprintln(out)
			}
			if result.SavedPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s transcript to %s\n", result.Format, result.SavedPath)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Preferred language codes in order (default from config)")
	cmd.Flags().BoolVar(&generated, "generated", false, "Use the auto-generated track for the first --lang")
	cmd.Flags().StringVarP(&translate, "translate", "t", "", "Translate the transcript to this language code")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(formats.Names(), ", "))
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the saved transcript")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print only; do not write a file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}
