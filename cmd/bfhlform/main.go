package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bfhlform/internal/config"
	"bfhlform/internal/contract"
	"bfhlform/internal/form"
	"bfhlform/internal/logging"
	"bfhlform/internal/model"
	"bfhlform/internal/ui"
)

var version = "dev"

// errSubmitFailed is returned after the error message has already been
// printed, so main only needs to set the exit status.
var errSubmitFailed = errors.New("submit failed")

type cli struct {
	flags  config.Overrides
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	var inputFile string
	root := &cobra.Command{
		Use:   "bfhlform",
		Short: "Terminal form that posts JSON to a /bfhl endpoint and filters the reply",
		Long: `bfhlform posts a JSON object with a "data" field to a /bfhl endpoint and
shows the alphabets, numbers and highest_lowercase_alphabet fields of the
reply, filtered to the ones you pick.

Run without a subcommand to start the interactive form.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runForm(cmd.Context(), inputFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.Endpoint, "endpoint", "", "endpoint to POST to (env BFHL_ENDPOINT, default "+config.DefaultEndpoint+")")
	pf.StringVar(&c.flags.FilterStyle, "filter-style", "", "filter control: dropdown or checkbox (env BFHL_FILTER_STYLE)")
	pf.StringVar(&c.flags.Render, "render", "", "results format: lines or json (env BFHL_RENDER)")
	pf.StringVar(&c.flags.ContractFile, "contract", "", "OpenAPI document describing the endpoint (env BFHL_CONTRACT)")
	pf.BoolVar(&c.flags.Debug, "debug", false, "write a debug log (env BFHL_DEBUG=1, file BFHL_LOG_FILE)")
	root.Flags().StringVar(&inputFile, "input", "", "prefill the input pane from a file")

	root.AddCommand(newSubmitCmd(c), newVersionCmd())
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.flags)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	c.logger.Debug("config loaded",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("filter_style", cfg.FilterStyle),
		zap.String("render", cfg.Render),
		zap.String("contract", cfg.ContractFile),
	)
	return nil
}

func (c *cli) submitter(ctx context.Context) (*form.Submitter, error) {
	var (
		ct  *contract.Contract
		err error
	)
	if c.cfg.ContractFile != "" {
		ct, err = contract.LoadFile(ctx, c.cfg.ContractFile)
	} else {
		ct, err = contract.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	endpoint, err := ct.Endpoint(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", c.cfg.Endpoint, err)
	}
	return form.NewSubmitter(endpoint, ct, c.logger), nil
}

func (c *cli) runForm(ctx context.Context, inputFile string) error {
	sub, err := c.submitter(ctx)
	if err != nil {
		return err
	}
	app := ui.NewApp(sub, ui.Options{
		Style:        c.cfg.Style(),
		Mode:         c.cfg.RenderMode(),
		Editor:       c.cfg.Editor,
		ClearOnError: c.cfg.ClearOnError,
		Logger:       c.logger,
	})
	if inputFile != "" {
		b, err := os.ReadFile(inputFile)
		if err != nil {
			return err
		}
		app.SetInput(strings.TrimRight(string(b), "\n"))
	}
	return app.Run()
}

func newSubmitCmd(c *cli) *cobra.Command {
	var (
		file    string
		filters []string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit JSON once and print the filtered reply",
		Long: `Reads JSON from --file (or stdin), posts it like the interactive form does
and prints the selected reply fields. On any failure the form's error
message is printed to stderr and the exit status is 1.

Example:
  echo '{"data": ["A","b","1"]}' | bfhlform submit --filter numbers --filter alphabets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			st := form.New(c.cfg.RenderMode())
			for _, name := range filters {
				f, err := model.ParseField(name)
				if err != nil {
					return err
				}
				if !st.Filters.Has(f) {
					st = form.ToggleFilter(st, f)
				}
			}
			st = form.SetInput(st, string(raw))

			sub, err := c.submitter(cmd.Context())
			if err != nil {
				return err
			}
			st = sub.Submit(cmd.Context(), st)
			if st.Err != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), st.Err)
				return errSubmitFailed
			}

			view, _ := form.Current(st)
			fmt.Fprintln(cmd.OutOrStdout(), view.Render(st.Mode))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read JSON from file instead of stdin")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "reply field to show (alphabets, numbers, highest_lowercase_alphabet); repeatable")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "bfhlform", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSubmitFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
