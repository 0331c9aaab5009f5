package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ozzymcduff/marisa-trie/keyset"
	"github.com/ozzymcduff/marisa-trie/trie/louds"
)

const buildLong = `Build a trie from one key per line. A line may end in a tab followed by
a number, which becomes the weight of the key; otherwise the whole line,
tabs included, is the key and its weight is 1. A trailing carriage return
is dropped.`

func DefineBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "build [input]",
		Short:        "Build a trie from one key per line, optionally key<TAB>weight",
		Long:         buildLong,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         RunBuild,
	}

	defaults := louds.DefaultConfig()
	cmd.Flags().StringP("output", "o", "", "path of the trie file to write")
	cmd.Flags().Int("levels", defaults.NumLevels, "number of cascade levels")
	cmd.Flags().String("tail", defaults.TailMode.String(), "tail mode: none, whole or lcs")
	cmd.Flags().String("order", defaults.IDOrder.String(), "id order: dfs, insertion or weight")
	cmd.Flags().Bool("weights", false, "keep per-key weights in the trie")
	cmd.Flags().Int("workers", 1, "goroutines used to sort keys")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func RunBuild(cmd *cobra.Command, args []string) error {
	cfg, err := parseBuildConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	cfg.Logger = logger

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input %q: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	ks, err := readKeys(in, cmd, noProgress)
	if err != nil {
		return err
	}

	t, err := louds.Build(ks, cfg)
	if err != nil {
		return err
	}
	ks.Reset()
	output, _ := cmd.Flags().GetString("output")
	if err := t.Save(output); err != nil {
		return err
	}
	info, err := os.Stat(output)
	if err != nil {
		return err
	}

	logger.Info("trie written",
		zap.String("path", output),
		zap.Uint64("keys", t.NumKeys()),
		zap.Int64("bytes", info.Size()))
	fmt.Fprintf(cmd.OutOrStdout(), "%s keys, %d levels, %s written to %s\n",
		humanize.Comma(int64(t.NumKeys())), t.NumLevels(), humanize.IBytes(uint64(info.Size())), output)
	return nil
}

func parseBuildConfig(cmd *cobra.Command) (louds.Config, error) {
	cfg := louds.DefaultConfig()
	cfg.NumLevels, _ = cmd.Flags().GetInt("levels")
	cfg.KeepWeights, _ = cmd.Flags().GetBool("weights")
	cfg.Workers, _ = cmd.Flags().GetInt("workers")

	tail, _ := cmd.Flags().GetString("tail")
	tailMode, err := louds.ParseTailMode(tail)
	if err != nil {
		return cfg, err
	}
	cfg.TailMode = tailMode

	order, _ := cmd.Flags().GetString("order")
	idOrder, err := louds.ParseIDOrder(order)
	if err != nil {
		return cfg, err
	}
	cfg.IDOrder = idOrder

	return cfg, cfg.Validate()
}

// readKeys pushes one key per line.
func readKeys(r io.Reader, cmd *cobra.Command, noProgress bool) (*keyset.KeySet, error) {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("reading keys"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	if noProgress {
		bar = progressbar.DefaultSilent(-1)
	}

	ks := keyset.New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		key, weight := parseKeyLine(sc.Bytes())
		ks.PushWeighted(key, weight)
		_ = bar.Add(1)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keys at line %d: %w", line+1, err)
	}
	_ = bar.Finish()
	return ks, nil
}

// parseKeyLine splits off a trailing tab-separated weight. A tab whose
// remainder is not a number belongs to the key.
func parseKeyLine(line []byte) ([]byte, float64) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if i := bytes.LastIndexByte(line, '\t'); i >= 0 {
		if w, err := strconv.ParseFloat(string(line[i+1:]), 64); err == nil {
			return line[:i], w
		}
	}
	return line, 1
}
