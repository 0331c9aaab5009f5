//go:build unix

package louds

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedTrie is a Trie decoded in place from a read-only memory mapping of
// its file. It must be closed, and must not be used after Close.
type MappedTrie struct {
	*Trie
	data []byte
}

// Map memory-maps a file written by Save.
func Map(path string) (*MappedTrie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info for %q: %w", path, err)
	}
	size := fi.Size()
	if size < headerSize+checksumSize {
		return nil, corrupt("file %q has only %d bytes", path, size)
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("file %q is too large to map: %d bytes", path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to mmap file %q: %w", path, err)
	}

	var t Trie
	if err := Deserialize(data, &t); err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}
	return &MappedTrie{Trie: &t, data: data}, nil
}

// Close unmaps the file.
func (m *MappedTrie) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.Trie = nil
	if err != nil {
		return fmt.Errorf("failed to munmap: %w", err)
	}
	return nil
}
