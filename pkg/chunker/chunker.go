package chunker

import (
	"math"
)

// 切分参数 (单位: 字节)
// 这些是协议常量：修改它们会改变所有文件的切分点，从而改变所有 Chunk 的 Hash
const (
	MinSize   = 2048
	AvgSize   = 4096
	MaxSize   = 65535
	NormLevel = 1
)

// Chunk 是原始 buffer 中的一段 [Offset, Offset+Length)
type Chunk struct {
	Offset int
	Length int
}

// Chunker 是一个无状态的切分工具 (FastCDC, Gear Hash + 归一化切分)
type Chunker struct {
	maskS uint64
	maskL uint64
}

func NewChunker() *Chunker {
	bits := int(math.Round(math.Log2(float64(AvgSize))))
	return &Chunker{
		maskS: highMask(bits + NormLevel),
		maskL: highMask(bits - NormLevel),
	}
}

// highMask 取高位的 n 个 bit。
// Gear Hash 每步左移一位，高位覆盖最近 64 个字节，窗口比低位大
func highMask(n int) uint64 {
	return ^uint64(0) << (64 - n)
}

// Cut 将数据切分成一系列的切点。
// 返回值:
//
//	[]int: 每一块的结束 offset (不含)，最后一个一定等于 len(data)。
//	空输入返回 nil。
func (c *Chunker) Cut(data []byte) []int {
	var cutPoints []int
	offset := 0
	n := len(data)

	for offset < n {
		// 1. 剩余不足最小块，直接收尾
		if n-offset <= MinSize {
			cutPoints = append(cutPoints, n)
			return cutPoints
		}

		// 2. 每次新块开始，fp 重置为 0，跳过前 MinSize 字节
		fp := uint64(0)
		idx := offset + MinSize

		normLimit := min(offset+AvgSize, n)
		maxLimit := min(offset+MaxSize, n)

		scan := func(limit int, mask uint64) bool {
			for ; idx < limit; idx++ {
				fp = (fp << 1) + gearTable[data[idx]]
				if (fp & mask) == 0 {
					cutPoints = append(cutPoints, idx+1)
					offset = idx + 1
					return true
				}
			}
			return false
		}

		// A. 归一化区域 (严掩码)
		if scan(normLimit, c.maskS) {
			continue
		}

		// B. 普通区域 (宽掩码)
		if scan(maxLimit, c.maskL) {
			continue
		}

		// C. 强制切分 (或者到达文件末尾)
		cutPoints = append(cutPoints, maxLimit)
		offset = maxLimit
	}

	return cutPoints
}

// Chunks 和 Cut 一样，但返回 {Offset, Length} 形式
func (c *Chunker) Chunks(data []byte) []Chunk {
	cuts := c.Cut(data)
	chunks := make([]Chunk, 0, len(cuts))
	start := 0
	for _, end := range cuts {
		chunks = append(chunks, Chunk{Offset: start, Length: end - start})
		start = end
	}
	return chunks
}
