// bitops.go provides the binary decomposition helper used by constant materialization
// (spec.md section 4.1): turning a literal N into an O(log N) sequence of shift/increment
// primitives instead of unary repetition.

package util

import "math/big"

// BitLen returns floor(log2(n)) for n > 0. BitLen(0) is undefined; callers must special-case
// zero themselves (materializing zero is a single RST, no shifts).
func BitLen(n *big.Int) int {
	return n.BitLen() - 1
}

// Bit reports whether bit i of n is set.
func Bit(n *big.Int, i int) bool {
	return n.Bit(i) == 1
}
