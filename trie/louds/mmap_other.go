//go:build !unix

package louds

// MappedTrie is a Trie loaded from a file. Platforms without mmap read the
// whole file into memory.
type MappedTrie struct {
	*Trie
}

// Map loads a file written by Save.
func Map(path string) (*MappedTrie, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &MappedTrie{Trie: t}, nil
}

func (m *MappedTrie) Close() error {
	m.Trie = nil
	return nil
}
