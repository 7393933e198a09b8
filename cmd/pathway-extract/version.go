package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/pathway-extract/internal/server"
)

// Set by ldflags during build.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and OCR backend information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("pathway-extract %s\n", server.Version)
		cmd.Printf("  Build time: %s\n", BuildTime)
		cmd.Printf("  Git commit: %s\n", GitCommit)

		st := current.ocr.Status()
		if !st.Available {
			cmd.Printf("  OCR:        %s (tesseract unavailable)\n", st.Backend)
			return
		}
		cmd.Printf("  OCR:        %s, tesseract %s, language %s\n", st.Backend, st.Version, st.Language)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
