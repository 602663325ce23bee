package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motongxue/chunkedRecordTransfer/client"
	"github.com/motongxue/chunkedRecordTransfer/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a recording chunk by chunk and finalize it",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpload,
}

var (
	uploadDir       string
	uploadChunkSize int
)

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringVar(&uploadDir, "dir", "", "directory of chunk files (chunk_0.webm, chunk_1.webm, ...)")
	uploadCmd.Flags().IntVar(&uploadChunkSize, "chunk-size", 0, "bytes per chunk when slicing a file (default client.chunkSize)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	if (uploadDir == "") == (len(args) == 0) {
		return fmt.Errorf("pass either a file or --dir")
	}

	var (
		chunks    [][]byte
		sourceMD5 string
		err       error
	)
	if uploadDir != "" {
		chunks, err = client.ChunksFromDir(uploadDir)
	} else {
		chunkSize := uploadChunkSize
		if chunkSize <= 0 {
			chunkSize = cfg.Client.ChunkSize
		}
		chunks, err = client.SliceFile(args[0], chunkSize)
		if err == nil {
			sourceMD5, err = fileMD5(args[0])
		}
	}
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to upload")
	}

	out := cmd.OutOrStdout()
	report, err := newUploader(newTransport()).UploadAll(cmd.Context(), chunks)
	fmt.Fprintf(out, "uploaded %d/%d chunks\n", len(chunks)-len(report.Abandoned), len(chunks))
	for _, idx := range report.Abandoned {
		fmt.Fprintf(out, "abandoned chunk %d: %v\n", idx, report.Chunks[idx].Err)
	}
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	fmt.Fprintf(out, "finalized %s (%d bytes, md5 %s)\n", report.Result.Path, report.Result.Size, report.Result.MD5)
	if sourceMD5 != "" && sourceMD5 != report.Result.MD5 {
		return fmt.Errorf("md5 mismatch: source %s, server %s", sourceMD5, report.Result.MD5)
	}
	return nil
}

func fileMD5(name string) (string, error) {
	file, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return utils.CalMD5(file)
}
