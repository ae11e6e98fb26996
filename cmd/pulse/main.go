// ABOUTME: CLI entrypoint for pulse with serve, render, seed, and preview commands.
// ABOUTME: Wires configuration, logging, the content store, the render cache, and the web server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2389-research/pulse/config"
)

var version = "dev"

// app carries state shared by every subcommand.
type app struct {
	log     *logrus.Logger
	verbose bool
	dataDir string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the CLI with the given arguments and streams, returning the
// process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(&app{log: logrus.New()})
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pulse",
		Short:         "Rich-text site renderer and content server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.log.SetOutput(cmd.ErrOrStderr())
			a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if a.verbose {
				a.log.SetLevel(logrus.DebugLevel)
			}
			return config.LoadDotEnv(".env")
		},
	}
	root.SetVersionTemplate("pulse {{.Version}}\n")

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Data directory (default: $PULSE_HOME or $XDG_DATA_HOME/pulse)")

	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newSeedCmd(a),
		newPreviewCmd(a),
	)
	return root
}

// loadConfig reads PULSE_* settings. --data-dir wins over PULSE_HOME, which
// wins over the XDG default.
func (a *app) loadConfig() (*config.Config, error) {
	home, err := defaultDataDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FromEnv(home)
	if err != nil {
		return nil, err
	}
	if a.dataDir != "" {
		cfg.Home = a.dataDir
	}
	if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

// readInput returns the contents of path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	return data, args[0], nil
}
