package digestcmder

import (
	"fmt"

	godigest "github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/seclist/pkg/chain"
	"github.com/papercomputeco/seclist/pkg/digest"
)

const digestLongDesc string = `Print the digest a node would carry.

With only a value, the digest is that of a tail node. With a successor
digest, the successor's canonical form is folded into the input the way
the chain links nodes.

Examples:
  seclist digest a
  seclist digest b sha256:ca978112ca1bbdcafac231b39a23dc4da786eff8147c4e72b9807785afee48bb`

const digestShortDesc string = "Compute a node digest"

type digestCommander struct {
	algorithm string
}

func NewDigestCmd() *cobra.Command {
	cmder := &digestCommander{}

	cmd := &cobra.Command{
		Use:   "digest <value> [successor-digest]",
		Short: digestShortDesc,
		Long:  digestLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.algorithm, "digest", "d", "sha256", "Digest algorithm (sha256, sha384, sha512)")

	return cmd
}

func (c *digestCommander) run(cmd *cobra.Command, args []string) error {
	d, err := digest.FromName(c.algorithm)
	if err != nil {
		return err
	}

	var successor *godigest.Digest
	if len(args) == 2 {
		parsed, err := godigest.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid successor digest %q: %w", args[1], err)
		}
		successor = &parsed
	}

	fmt.Fprintln(cmd.OutOrStdout(), chain.ComputeDigest(d, args[0], successor))
	return nil
}
