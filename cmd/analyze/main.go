// Command analyze runs the document pipeline on a local PDF:
//
//	go run ./cmd/analyze report.pdf --structured
//	go run ./cmd/analyze extract report.pdf
package main

import (
	"os"

	"doc-analyzer/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
