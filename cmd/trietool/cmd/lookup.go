package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func DefineLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "lookup <trie> <key>...",
		Short:        "Print the id of every given key",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE:         RunLookup,
	}
}

func RunLookup(cmd *cobra.Command, args []string) error {
	t, err := openTrie(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	out := cmd.OutOrStdout()
	for _, key := range args[1:] {
		if id, ok := t.LookupString(key); ok {
			fmt.Fprintf(out, "%d\t%s\n", id, key)
		} else {
			fmt.Fprintf(out, "-\t%s\n", key)
		}
	}
	return nil
}
