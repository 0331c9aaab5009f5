package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func DefineStatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stat <trie>",
		Short:        "Print the structure and memory breakdown of a trie",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunStat,
	}
	cmd.Flags().Bool("json", false, "print the memory report as JSON")
	return cmd
}

func RunStat(cmd *cobra.Command, args []string) error {
	t, err := openTrie(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	out := cmd.OutOrStdout()
	report := t.MemDetailed()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		fmt.Fprintln(out, report.JSON())
		return nil
	}

	fmt.Fprint(out, t.String())
	if n := t.NumKeys(); n > 0 {
		fmt.Fprintf(out, "| %s keys, %.2f bits per key\n",
			humanize.Comma(int64(n)), float64(report.TotalBytes)*8/float64(n))
	}
	report.Fprint(out, report.TotalBytes)
	return nil
}
