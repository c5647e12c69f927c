package probe

import (
	"fmt"
	"math/big"
	"strings"
)

// parseHexUint64 decodes a big-endian hex quantity, with or without the
// 0x prefix.
func parseHexUint64(hexStr string) (uint64, error) {
	s := strings.TrimPrefix(hexStr, "0x")
	if s == "" {
		return 0, fmt.Errorf("invalid hex: %q", hexStr)
	}
	n := new(big.Int)
	if _, ok := n.SetString(s, 16); !ok {
		return 0, fmt.Errorf("invalid hex: %q", hexStr)
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("hex out of uint64 range: %q", hexStr)
	}
	return n.Uint64(), nil
}

func getString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
