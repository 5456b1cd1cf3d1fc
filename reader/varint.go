package reader

import "github.com/boxesandglue/fontcore/ferrors"

// UIntBase128 reads the WOFF2 variable-length unsigned integer format: a
// sequence of base-128 digits, most significant first, continuation bit
// set on every byte but the last. The encoding is invalid if it exceeds
// 5 bytes, if the accumulator exceeds 0x1FFFFF before the next shift, or
// if it starts with a zero continuation byte (non-minimal encoding), per
// the WOFF2 spec's UIntBase128 definition.
func (r *R) UIntBase128() (uint32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		if i == 0 && b == 0x80 {
			return 0, &ferrors.VariableLengthOverflow{Encoding: "UIntBase128: non-minimal leading byte"}
		}
		result = (result << 7) | uint32(b&0x7F)
		if result > 0x1FFFFF {
			return 0, &ferrors.VariableLengthOverflow{Encoding: "UIntBase128: exceeds 0x1FFFFF"}
		}
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, &ferrors.VariableLengthOverflow{Encoding: "UIntBase128: more than 5 bytes"}
}

// Uint255 reads the WOFF2 255UInt16 packed format used for glyf/loca
// transform point coordinates: a single byte selects between a literal
// value, a one-byte offset value, or a two-byte big-endian value.
func (r *R) Uint255() (uint16, error) {
	const (
		oneMoreByteCode1 = 255
		oneMoreByteCode2 = 254
		wordCode         = 253
		lowestUCode      = 253
	)
	code, err := r.U8()
	if err != nil {
		return 0, err
	}
	switch code {
	case wordCode:
		return r.U16()
	case oneMoreByteCode1:
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		return uint16(b) + lowestUCode, nil
	case oneMoreByteCode2:
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		return uint16(b) + lowestUCode*2, nil
	default:
		return uint16(code), nil
	}
}

