package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

var resubmitCmd = &cobra.Command{
	Use:   "resubmit <file>",
	Short: "Upload a single chunk again",
	Args:  cobra.ExactArgs(1),
	RunE:  runResubmit,
}

var resubmitIndex int

func init() {
	rootCmd.AddCommand(resubmitCmd)

	resubmitCmd.Flags().IntVar(&resubmitIndex, "index", -1, "index of the chunk")
	_ = resubmitCmd.MarkFlagRequired("index")
}

func runResubmit(cmd *cobra.Command, args []string) error {
	if resubmitIndex < 0 {
		return fmt.Errorf("--index must be >= 0")
	}
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	result := newUploader(newTransport()).SubmitChunk(cmd.Context(), models.Chunk{Index: resubmitIndex, Payload: payload})
	if !result.OK() {
		return fmt.Errorf("chunk %d not accepted after %d attempts: %w", result.Index, result.Attempts, result.Err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "chunk %d uploaded after %d attempt(s)\n", result.Index, result.Attempts)
	return nil
}
