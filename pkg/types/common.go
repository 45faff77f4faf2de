// pkg/types/common.go
package types

import "strings"

const (
	// HashLen 是完整 Hash 的十六进制长度 (SHA-1, 160 bit)
	HashLen = 40
	// MinPrefixLen 是短哈希允许的最小长度
	MinPrefixLen = 4
)

// Hash 代表对象的唯一标识符 (SHA-1 Hex String, 小写)
// 这是一个“值对象”，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

// IsValid 要求恰好 40 个小写十六进制字符
func (h Hash) IsValid() bool { return len(h) == HashLen && isLowerHex(string(h)) }

// Shard 返回分片目录名和文件名: "aabbcc..." -> ("aa", "bbcc...")
func (h Hash) Shard() (dir, file string) {
	s := string(h)
	if len(s) < 2 {
		return s, ""
	}
	return s[:2], s[2:]
}

// HashPrefix 是用户输入的 (可能是缩写的) 哈希
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

// Normalize 统一为小写并去掉首尾空白
func (p HashPrefix) Normalize() HashPrefix {
	return HashPrefix(strings.ToLower(strings.TrimSpace(string(p))))
}

// IsFull 表示长度已经是完整 Hash，不需要扫描目录
func (p HashPrefix) IsFull() bool { return len(p) == HashLen }

// TooShort 表示既不是完整 Hash，又短于 MinPrefixLen
func (p HashPrefix) TooShort() bool { return !p.IsFull() && len(p) < MinPrefixLen }

// IsHex 检查是否只包含十六进制字符 (防止 "../" 之类的路径穿越)
func (p HashPrefix) IsHex() bool { return isLowerHex(string(p)) }

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
