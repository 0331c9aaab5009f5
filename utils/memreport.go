package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// MemReport is a hierarchical memory usage report for a component.
type MemReport struct {
	Name       string      `json:"name"`
	TotalBytes int         `json:"total_bytes"`
	Children   []MemReport `json:"children,omitempty"`
}

// Find returns the first report named name in a depth-first walk.
func (r MemReport) Find(name string) (MemReport, bool) {
	if r.Name == name {
		return r, true
	}
	for _, child := range r.Children {
		if found, ok := child.Find(name); ok {
			return found, true
		}
	}
	return MemReport{}, false
}

// Fprint writes the report as an indented tree, sizes in human units and,
// when total is positive, as a share of total.
func (r MemReport) Fprint(w io.Writer, total int) {
	r.write(w, 0, total)
}

// JSON returns a JSON string representation of the MemReport.
func (r MemReport) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"error": "%s"}`, err.Error())
	}
	return string(b)
}

// String returns the report as a tree.
func (r MemReport) String() string {
	var sb strings.Builder
	r.write(&sb, 0, 0)
	return sb.String()
}

func (r MemReport) write(w io.Writer, indent int, total int) {
	prefix := strings.Repeat("  ", indent)
	size := humanize.IBytes(uint64(max(r.TotalBytes, 0)))
	if total > 0 {
		fmt.Fprintf(w, "%s- %s: %s (%.1f%%)\n", prefix, r.Name, size, 100*float64(r.TotalBytes)/float64(total))
	} else {
		fmt.Fprintf(w, "%s- %s: %s\n", prefix, r.Name, size)
	}
	for _, child := range r.Children {
		child.write(w, indent+1, total)
	}
}
