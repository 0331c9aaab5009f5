package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ozzymcduff/marisa-trie/trie/louds"
)

func DefineReverseCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "reverse <trie> <id>...",
		Short:        "Print the key of every given id",
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE:         RunReverse,
	}
}

func RunReverse(cmd *cobra.Command, args []string) error {
	t, err := openTrie(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	a := louds.NewAgent(t.Trie)
	for _, s := range args[1:] {
		id, err := parseID(s)
		if err != nil {
			return err
		}
		if err := a.SetQueryID(id); err != nil {
			return err
		}
		if err := a.ReverseLookup(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", a.ID(), a.Key())
	}
	return nil
}
