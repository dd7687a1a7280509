package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinkerbelle-io/tb-fingerprint/internal/audit"
)

func newAuditCmd() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect command audit logs",
	}
	auditCmd.AddCommand(&cobra.Command{
		Use:   "verify <path>",
		Short: "Check the hash chain of an audit log written with --audit-log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := audit.Verify(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries, hash chain intact\n", args[0], n)
			return nil
		},
	})
	return auditCmd
}
