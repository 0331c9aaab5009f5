package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func DefinePrefixCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "prefix <trie> <query>",
		Short:        "List keys that are prefixes of query, shortest first",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunPrefix,
	}
}

func RunPrefix(cmd *cobra.Command, args []string) error {
	t, err := openTrie(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	for id, key := range t.CommonPrefixSearch([]byte(args[1])) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, key)
	}
	return nil
}
