package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the chunks received by the server",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	info, err := newTransport().Status(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "state:      %s\n", info.State)
	fmt.Fprintf(out, "expected:   %d\n", info.Expected)
	fmt.Fprintf(out, "received:   %d\n", info.Received)
	fmt.Fprintf(out, "unreceived: %v\n", info.Unreceived)
	return nil
}
