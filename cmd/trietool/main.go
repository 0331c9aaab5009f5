package main

import (
	"github.com/ozzymcduff/marisa-trie/cmd/trietool/cmd"
	"github.com/ozzymcduff/marisa-trie/errutil"
)

func main() {
	errutil.FatalIf(cmd.Execute())
}
