package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"blobular/pkg/index"

	"github.com/dustin/go-humanize"
)

// PrintIndex 以表格形式打印已加入的文件 (像 git ls-files -s)
// abbrev > 0 时截断 Hash
func PrintIndex(entries []index.Entry, w io.Writer, abbrev int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		hash := e.Hash.String()
		if abbrev > 0 && abbrev < len(hash) {
			hash = hash[:abbrev]
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", hash, humanize.IBytes(uint64(e.Size)), e.Chunks, e.Path)
	}
	return tw.Flush()
}
