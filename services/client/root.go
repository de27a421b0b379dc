package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/02loveslollipop/arbor-inventory/services/client/internal/config"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/gateway"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/session"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/treeapi"
	"github.com/02loveslollipop/arbor-inventory/services/client/internal/ui"
)

// reportedError marks a failure the user has already been shown as a notice.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// cli is the state shared by every subcommand of one invocation.
type cli struct {
	verbose bool
	apiBase string
	assume  bool

	cfg    config.Config
	logger *zap.Logger
	tokens *session.TokenStore
	app    *ui.App
	styles ui.Styles
	in     *bufio.Reader
}

func newRootCmd() *cobra.Command {
	c := &cli{styles: ui.DefaultStyles()}

	root := &cobra.Command{
		Use:   "arbor",
		Short: "Tree inventory client",
		Long: `arbor browses and edits a tree inventory served over HTTP.

List and map views share one filter: a city and an optional partial address.
Adding, editing and deleting trees requires "arbor login" first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&c.apiBase, "api", "", "Backend base URL (default: $ARBOR_API_BASE)")

	root.AddCommand(
		newCitiesCmd(c),
		newStreetsCmd(c),
		newListCmd(c),
		newMapCmd(c),
		newShowCmd(c),
		newLookupCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newDeleteCmd(c),
		newExportCmd(c),
		newLoginCmd(c),
		newRegisterCmd(c),
		newLogoutCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if c.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.apiBase != "" {
		cfg.APIBase = strings.TrimRight(c.apiBase, "/")
	}
	c.cfg = cfg

	tokens, err := session.Load(cfg.TokenFile)
	if err != nil {
		return err
	}
	c.tokens = tokens
	c.in = bufio.NewReader(cmd.InOrStdin())

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	gw := gateway.New(cfg.APIBase, httpClient, tokens, logger.Named("gateway"))
	notifier := ui.WriterNotifier{W: cmd.OutOrStdout()}
	c.app = ui.NewApp(treeapi.New(gw), tokens, notifier, ui.ConfirmFunc(c.confirm(cmd.OutOrStdout())), logger)

	logger.Debug("client ready", zap.String("api", cfg.APIBase), zap.Bool("logged_in", tokens.LoggedIn()))
	return nil
}

// dispatch runs one intent. Failures have been shown already, so they come back
// marked as reported.
func (c *cli) dispatch(ctx context.Context, cmd ui.Command) error {
	if err := c.app.Dispatch(ctx, cmd); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func (c *cli) confirm(out io.Writer) func(prompt string) bool {
	return func(prompt string) bool {
		if c.assume {
			return true
		}
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, _ := c.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

// readLine prompts for a value on the command input.
func (c *cli) readLine(out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}
