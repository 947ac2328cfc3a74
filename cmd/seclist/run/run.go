package runcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/seclist/pkg/chain"
	"github.com/papercomputeco/seclist/pkg/digest"
	"github.com/papercomputeco/seclist/pkg/logger"
	"github.com/papercomputeco/seclist/pkg/render"
	"github.com/papercomputeco/seclist/pkg/scenario"
)

const runLongDesc string = `Apply a scenario of chain operations and print the result.

A scenario is a TOML file with a list of steps. Each step is one of
add, insert, remove, get or verify. Rejected steps (for example an
out of range index) are reported and the run continues unless
--fail-fast is set.

Examples:
  seclist run walkthrough.toml
  seclist run --digest sha512 --fail-fast walkthrough.toml
  seclist run --watch walkthrough.toml`

const runShortDesc string = "Run a chain scenario"

type runCommander struct {
	digest   string
	failFast bool
	watch    bool
	noColor  bool
}

func NewRunCmd() *cobra.Command {
	cmder := &runCommander{}

	cmd := &cobra.Command{
		Use:   "run <scenario.toml>",
		Short: runShortDesc,
		Long:  runLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.digest, "digest", "d", "", "Digest algorithm, overrides the scenario (sha256, sha384, sha512)")
	cmd.Flags().BoolVar(&cmder.failFast, "fail-fast", false, "Stop at the first rejected step")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Re-run the scenario whenever the file changes")
	cmd.Flags().BoolVar(&cmder.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (c *runCommander) run(ctx context.Context, cmd *cobra.Command, path string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	log := logger.NewLogger(debug)
	defer log.Sync()

	printer := render.NewPrinter(cmd.OutOrStdout(), c.color(cmd))

	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	if err := c.execute(printer, log, s); err != nil {
		return err
	}

	if !c.watch {
		return nil
	}

	w, err := scenario.NewWatcher(path)
	if err != nil {
		return err
	}
	defer w.Close()

	log.Info("watching scenario", zap.String("path", path))

	return w.Run(ctx, func(s *scenario.Scenario, err error) {
		if err != nil {
			printer.Error("%v", err)
			return
		}

		printer.Line("")
		if err := c.execute(printer, log, s); err != nil {
			printer.Error("%v", err)
		}
	})
}

// execute runs s against a fresh chain and prints each step and the final chain.
func (c *runCommander) execute(printer *render.Printer, log *zap.Logger, s *scenario.Scenario) error {
	name := c.digest
	if name == "" {
		name = s.Digest
	}

	d, err := digest.FromName(name)
	if err != nil {
		return err
	}

	ch := chain.New(d)
	report, runErr := scenario.Run(ch, s, c.failFast)

	for _, res := range report.Results {
		log.Debug("applied step",
			zap.Int("step", res.Step),
			zap.Stringer("op", res.Op),
			zap.Int("length", res.Length),
			zap.String("head_digest", logger.Short(res.Head.String(), 23)),
		)

		switch {
		case res.Err != nil:
			printer.Error("step %d %s: %v", res.Step, res.Op, res.Err)
		case res.Node != nil:
			printer.Line("step %d %s -> %q %s", res.Step, res.Op, res.Node.Value, res.Node.Digest)
		case res.Valid != nil:
			printer.Line("step %d %s", res.Step, res.Op)
			printer.Verdict(res.Mismatches)
		default:
			printer.Line("step %d %s length=%d head=%s", res.Step, res.Op, res.Length, logger.Short(res.Head.String(), 23))
		}
	}

	printer.Line("")
	printer.Chain(ch.Entries(), ch.Verify())
	printer.Line("%d steps, %d rejected", len(report.Results), report.Failed)

	if runErr != nil {
		return fmt.Errorf("scenario stopped: %w", runErr)
	}

	return nil
}

func (c *runCommander) color(cmd *cobra.Command) bool {
	if c.noColor {
		return false
	}

	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
