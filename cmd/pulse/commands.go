// ABOUTME: Subcommand definitions: serve the site, render a document, load a seed file, preview in the terminal.
// ABOUTME: Each command reads configuration lazily so render and preview work without a data directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2389-research/pulse/config"
	"github.com/2389-research/pulse/content"
	"github.com/2389-research/pulse/render"
	"github.com/2389-research/pulse/richtext"
	"github.com/2389-research/pulse/tui"
	"github.com/2389-research/pulse/web"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var seedFile, siteFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if siteFile != "" {
				cfg.SiteFile = siteFile
			}

			store, err := content.Open(cfg.DBPath())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if seedFile != "" {
				if err := a.seed(ctx, store, seedFile); err != nil {
					return err
				}
			}

			site, err := config.LoadSite(cfg.SiteFile)
			if err != nil {
				return err
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:        cfg.Bind,
				Store:       store,
				Site:        site,
				Cache:       render.NewCache(nil, cfg.CacheTTL),
				AuthToken:   cfg.AuthToken,
				CORSOrigins: cfg.CORSOrigins,
				SubmitRate:  cfg.SubmitRate,
				TrustProxy:  cfg.TrustProxy,
				Logger:      a.log,
			})
			if err != nil {
				return err
			}
			return a.listen(ctx, srv.HTTPServer())
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "Load a YAML seed file before serving")
	cmd.Flags().StringVar(&siteFile, "site", "", "Site settings YAML (overrides PULSE_SITE_FILE)")
	return cmd
}

// listen serves until ctx is cancelled, then drains in-flight requests.
func (a *app) listen(ctx context.Context, httpSrv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", httpSrv.Addr).Info("pulse listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *app) seed(ctx context.Context, store *content.Store, path string) error {
	res, err := store.LoadSeedFile(ctx, path)
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"file":  path,
		"pages": res.Pages,
		"forms": res.Forms,
	}).Info("seed loaded")
	return nil
}

func newRenderCmd(a *app) *cobra.Command {
	var mode, heading string
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a rich-text document to stdout",
		Long: "Render a rich-text document JSON file (or stdin) in html, snapshot, or text mode.\n" +
			"Malformed documents produce empty output.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := render.ParseMode(mode)
			if err != nil {
				return err
			}
			var opts render.Options
			if heading != "" {
				opts.FixedHeading = richtext.ParseHeadingTag(heading)
			}

			raw, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := render.Render(cmd.Context(), raw, m, opts)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"mode": m, "bytes": len(out)}).Debug("rendered document")

			w := cmd.OutOrStdout()
			if _, err := w.Write(out); err != nil {
				return err
			}
			if len(out) > 0 && !strings.HasSuffix(string(out), "\n") {
				_, err = fmt.Fprintln(w)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(render.ModeHTML), "Output mode: html, snapshot, text")
	cmd.Flags().StringVar(&heading, "heading", "", "Fixed heading level for snapshot mode (h1-h6)")
	return cmd
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load pages and forms from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			store, err := content.Open(cfg.DBPath())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			res, err := store.LoadSeedFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pages and %d forms into %s\n", res.Pages, res.Forms, cfg.DBPath())
			return err
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "preview [file|-]",
		Short: "Preview a rich-text document in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, name, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc := richtext.ParseDocument(raw)
			if plain {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), tui.RenderTerminal(doc))
				return err
			}

			opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout())}
			if name == "stdin" {
				// The document came from stdin, so keys must come from the terminal.
				opts = append(opts, tea.WithInputTTY())
			}
			a.log.WithField("document", name).Debug("starting preview")
			if _, err := tea.NewProgram(tui.NewPreviewModel(name, doc), opts...).Run(); err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print styled text instead of opening the viewer")
	return cmd
}
