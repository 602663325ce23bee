package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motongxue/chunkedRecordTransfer/models"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Ask the server to write the final file",
	RunE:  runFinalize,
}

var finalizeTotal int

func init() {
	rootCmd.AddCommand(finalizeCmd)

	finalizeCmd.Flags().IntVar(&finalizeTotal, "total", 0, "total number of chunks in the recording")
}

func runFinalize(cmd *cobra.Command, _ []string) error {
	result, err := newTransport().Finalize(cmd.Context(), finalizeTotal)
	if err != nil {
		if missing, ok := models.MissingIndex(err); ok {
			return fmt.Errorf("chunk %d is missing, resubmit it and finalize again", missing)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "finalized %s (%d chunks, %d bytes, md5 %s)\n", result.Path, result.Chunks, result.Size, result.MD5)
	return nil
}
