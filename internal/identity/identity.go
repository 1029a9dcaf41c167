package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// fallbackAddr 在请求未携带转发头时充当客户端地址。
const fallbackAddr = "127.0.0.1"

// ClientAddr 从 X-Forwarded-For 头取出链路上的第一跳，即原始客户端地址。
// 头为空时回退到 127.0.0.1，因此该函数总能给出结果。
func ClientAddr(forwardedFor string) string {
	addr := strings.TrimSpace(forwardedFor)
	if addr == "" {
		return fallbackAddr
	}

	if idx := strings.Index(addr, ","); idx >= 0 {
		addr = strings.TrimSpace(addr[:idx])
	}
	if addr == "" {
		return fallbackAddr
	}

	return addr
}

// Fingerprint 对客户端地址做单向散列，得到定长、可比较、不可逆的访客指纹。
// 原始地址不会被持久化。
func Fingerprint(addr string) string {
	sum := sha256.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:])
}

// Resolve 由转发头直接得到访客指纹。
func Resolve(forwardedFor string) string {
	return Fingerprint(ClientAddr(forwardedFor))
}
