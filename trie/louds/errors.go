package louds

import "errors"

var (
	// ErrConfiguration reports an invalid build configuration.
	ErrConfiguration = errors.New("louds: invalid configuration")
	// ErrOutOfRange reports a key ID outside [0, NumKeys()).
	ErrOutOfRange = errors.New("louds: id out of range")
	// ErrQueryNotSet reports an enumeration advanced before any SetQuery call.
	ErrQueryNotSet = errors.New("louds: query not set")
	// ErrCorruptFormat reports a serialized trie that cannot be loaded.
	ErrCorruptFormat = errors.New("louds: corrupt format")
	// ErrNoWeights reports a weight query on a trie built without KeepWeights.
	ErrNoWeights = errors.New("louds: weights were not kept")
)
