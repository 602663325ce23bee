package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/motongxue/chunkedRecordTransfer/client"
	"github.com/motongxue/chunkedRecordTransfer/utils"
)

var (
	cfgFile string
	cfg     *utils.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "recorder",
	Short: "Upload recorded chunks and reassemble them into one file",
	Long: `recorder runs both sides of the chunked recording upload.

  recorder serve                         # accept chunks on server.httpPort
  recorder upload recording.webm         # slice a file and upload it
  recorder upload --dir ./chunks         # upload chunk_0.webm, chunk_1.webm, ...
  recorder status                        # show which chunks the server is missing
  recorder resubmit --index 2 ./chunks/chunk_2.webm
  recorder finalize --total 3`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
}

// Execute 运行根命令
func Execute() error {
	return rootCmd.Execute()
}

func loadEnv(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = utils.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	logger, err = utils.NewLogger(cfg.Log.Level, cmd.ErrOrStderr())
	return err
}

func newTransport() *client.HTTPTransport {
	return client.NewHTTPTransport(cfg.Client.ServerURL, cfg.Client.Timeout)
}

func newUploader(transport client.Transport) *client.Uploader {
	return client.NewUploader(transport, cfg.Client.MaxAttempts, logger.Named("uploader"))
}
