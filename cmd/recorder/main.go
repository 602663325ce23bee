package main

import (
	"os"

	"github.com/motongxue/chunkedRecordTransfer/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
