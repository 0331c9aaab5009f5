package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func DefinePredictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "predict <trie> <prefix>",
		Short:        "List keys starting with prefix in byte order",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunPredict,
	}
	cmd.Flags().IntP("max", "n", 0, "stop after this many keys (0 lists all)")
	return cmd
}

func RunPredict(cmd *cobra.Command, args []string) error {
	t, err := openTrie(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	limit, _ := cmd.Flags().GetInt("max")
	n := 0
	for id, key := range t.PredictiveSearch([]byte(args[1])) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, key)
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return nil
}
