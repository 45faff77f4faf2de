package commands

import (
	"errors"
	"fmt"
	"io"
)

// ExitFatal 是所有失败共用的退出码
const ExitFatal = 128

// noter 由携带补充说明的错误实现 (如歧义的短哈希列出候选)
type noter interface {
	Notes() []string
}

// Report 把错误按 "fatal: <message>" 打印，随后每条补充说明一行 "note: <line>"
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "fatal: %s\n", err)

	var n noter
	if errors.As(err, &n) {
		for _, line := range n.Notes() {
			fmt.Fprintf(w, "note: %s\n", line)
		}
	}
}
