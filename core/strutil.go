package core

// appendInt appends the decimal form of n to dst without using strconv or
// fmt, keeping the trace formatter small on firmware builds.
func appendInt(dst []byte, n int64) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	var tmp [20]byte
	pos := len(tmp)
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	for u > 0 {
		pos--
		tmp[pos] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		pos--
		tmp[pos] = '-'
	}
	return append(dst, tmp[pos:]...)
}
