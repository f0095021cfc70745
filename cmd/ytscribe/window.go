package main

import (
	"context"

	"github.com/spf13/cobra"

	"ytscribe/internal/ui"
)

// startWindow blocks until the window session ends; tests replace it.
var startWindow = func(ctx context.Context, srv *ui.Server) error {
	return srv.Run(ctx)
}

func runWindow(cmd *cobra.Command, ctx *commandContext) error {
	svc, cfg, logger, err := ctx.service()
	if err != nil {
		return err
	}
	srv := ui.New(svc, ui.Options{
		Bind:          cfg.UI.Bind,
		OpenBrowser:   cfg.UI.OpenBrowser,
		IdleTimeout:   cfg.IdleTimeout(),
		LockPath:      cfg.LockPath(),
		DefaultFormat: cfg.Output.Format,
		DefaultSave:   cfg.Output.Save,
	}, logger)
	return startWindow(cmd.Context(), srv)
}
