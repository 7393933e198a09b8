package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <token>...",
	Short: "Resolve tokens against the vocabulary",
	Long: `Print the canonical symbol each token resolves to, one tab-separated
line per token. Tokens that do not resolve print "-".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	idx := current.extractor.Index()
	if !idx.Loaded() {
		return errors.New("no vocabulary loaded; pass --vocab or set PATHWAY_VOCABULARY")
	}
	for _, tok := range args {
		sym, ok := idx.Match(tok)
		if !ok {
			sym = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", tok, sym)
	}
	return nil
}
