// Package strx holds tiny allocation-light string/byte formatting helpers.
// No fmt/strconv dependency; suitable for MCU builds.
package strx

// AppendInt appends the base-10 representation of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n == 0 {
		return append(dst, '0')
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	var u uint64
	if neg {
		u = uint64(-n)
	} else {
		u = uint64(n)
	}
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return append(dst, buf[i:]...)
}

// AppendFixed appends v with the given number of decimals (0..4), rounding
// half away from zero. NaN appends "nan", matching C's printf of NAN; the
// wire format relies on this for absent fields.
func AppendFixed(dst []byte, v float32, decimals int) []byte {
	if v != v {
		return append(dst, "nan"...)
	}
	if decimals < 0 {
		decimals = 0
	}
	if decimals > 4 {
		decimals = 4
	}
	var pow int64 = 1
	for i := 0; i < decimals; i++ {
		pow *= 10
	}
	f := float64(v)
	neg := f < 0
	if neg {
		f = -f
	}
	scaled := int64(f*float64(pow) + 0.5)
	if neg && scaled != 0 {
		dst = append(dst, '-')
	}
	dst = AppendInt(dst, scaled/pow)
	if decimals > 0 {
		dst = append(dst, '.')
		for p := pow / 10; p >= 1; p /= 10 {
			dst = append(dst, byte('0'+(scaled/p)%10))
		}
	}
	return dst
}

// FormatFixed is AppendFixed into a fresh string.
func FormatFixed(v float32, decimals int) string {
	return string(AppendFixed(nil, v, decimals))
}

// AppendBool appends "true" or "false".
func AppendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}
