package louds

import (
	"fmt"

	"go.uber.org/zap"
)

// IDOrder selects how key IDs are assigned.
type IDOrder uint8

const (
	// IDOrderDepthFirst numbers keys in depth-first order, which equals
	// ascending lexicographic order of the keys.
	IDOrderDepthFirst IDOrder = iota
	// IDOrderInsertion numbers keys by the first time they were pushed.
	IDOrderInsertion
	// IDOrderWeight numbers keys by descending summed weight; ties keep
	// insertion order.
	IDOrderWeight
)

// TailMode selects how the suffixes of the last cascade level are stored.
type TailMode uint8

const (
	// TailNone stores no tail; the last level unrolls every edge byte by byte.
	TailNone TailMode = iota
	// TailWholeSuffix stores every suffix as its own copy.
	TailWholeSuffix
	// TailLongestCommonSuffix lets a suffix share the bytes of a longer
	// suffix that ends with it.
	TailLongestCommonSuffix
)

// MaxLevels bounds NumLevels. The level count is stored in one byte's
// range; building stops early anyway once a level has no links.
const MaxLevels = 255

type Config struct {
	NumLevels   int
	IDOrder     IDOrder
	TailMode    TailMode
	KeepWeights bool

	// Workers > 1 sorts first-byte partitions concurrently. The result is
	// identical to a sequential build.
	Workers int

	// Logger receives build diagnostics at debug level. Nil disables logging.
	Logger *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		NumLevels: 3,
		IDOrder:   IDOrderDepthFirst,
		TailMode:  TailLongestCommonSuffix,
		Workers:   1,
	}
}

func (c Config) Validate() error {
	if c.NumLevels < 1 || c.NumLevels > MaxLevels {
		return fmt.Errorf("%w: NumLevels %d not in [1, %d]", ErrConfiguration, c.NumLevels, MaxLevels)
	}
	if c.IDOrder > IDOrderWeight {
		return fmt.Errorf("%w: unknown IDOrder %d", ErrConfiguration, c.IDOrder)
	}
	if c.TailMode > TailLongestCommonSuffix {
		return fmt.Errorf("%w: unknown TailMode %d", ErrConfiguration, c.TailMode)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative Workers %d", ErrConfiguration, c.Workers)
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (o IDOrder) String() string {
	switch o {
	case IDOrderDepthFirst:
		return "dfs"
	case IDOrderInsertion:
		return "insertion"
	case IDOrderWeight:
		return "weight"
	}
	return fmt.Sprintf("IDOrder(%d)", uint8(o))
}

// ParseIDOrder accepts the names produced by IDOrder.String.
func ParseIDOrder(s string) (IDOrder, error) {
	for o := IDOrderDepthFirst; o <= IDOrderWeight; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown id order %q", ErrConfiguration, s)
}

func (m TailMode) String() string {
	switch m {
	case TailNone:
		return "none"
	case TailWholeSuffix:
		return "whole"
	case TailLongestCommonSuffix:
		return "lcs"
	}
	return fmt.Sprintf("TailMode(%d)", uint8(m))
}

// ParseTailMode accepts the names produced by TailMode.String.
func ParseTailMode(s string) (TailMode, error) {
	for m := TailNone; m <= TailLongestCommonSuffix; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown tail mode %q", ErrConfiguration, s)
}
