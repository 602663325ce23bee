package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/motongxue/chunkedRecordTransfer/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept chunk uploads and write the finalized file",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Run(ctx)
}
