package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	digestcmder "github.com/papercomputeco/seclist/cmd/seclist/digest"
	runcmder "github.com/papercomputeco/seclist/cmd/seclist/run"
	servecmder "github.com/papercomputeco/seclist/cmd/seclist/serve"
)

const rootLongDesc string = `seclist maintains tamper-evident linked chains.

Every node's digest binds its value to the digest of the node after it,
so the head digest commits to the entire chain and any retroactive edit
is detected by recomputing digests from the tail.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seclist",
		Short:        "Tamper-evident linked chains",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(digestcmder.NewDigestCmd())

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
