package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ozzymcduff/marisa-trie/trie/louds"
)

const AppName = "trietool"

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           AppName,
		Short:         AppName + " - build and query cascading succinct tries",
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log build diagnostics")

	rootCmd.AddCommand(
		DefineBuildCommand(),
		DefineLookupCommand(),
		DefineReverseCommand(),
		DefinePredictCommand(),
		DefinePrefixCommand(),
		DefineStatCommand(),
	)
	return rootCmd
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openTrie(path string) (*louds.MappedTrie, error) {
	t, err := louds.Map(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trie %q: %w", path, err)
	}
	return t, nil
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return uint32(id), nil
}
