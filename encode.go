package mmlcd

import "strconv"

// Header packs the three decimal digits of npa into two nibbles each
// followed by the 0xE trailer nibble: 408 -> 0x40 0x8e.
func Header(npa int) [HeaderSize]byte {
	if npa < 0 || npa > 999 {
		panic("mmlcd: npa out of range [" + strconv.Itoa(npa) + "]")
	}
	h, t, o := npa/100, (npa/10)%10, npa%10
	return [HeaderSize]byte{byte(h<<4 | t), byte(o<<4 | _trailer)}
}

// DecodeHeader is the inverse of Header.
func DecodeHeader(b [HeaderSize]byte) (int, bool) {
	h, t, o := int(b[0]>>4), int(b[0]&0x0f), int(b[1]>>4)
	if h > 9 || t > 9 || o > 9 || b[1]&0x0f != _trailer {
		return 0, false
	}
	return h*100 + t*10 + o, true
}

// Encode serializes the classification of NXX 200-999 under npa into a table
// of exactly t.Size() bytes. Entries are packed most significant first in
// ascending NXX order. Codes wider than the tier's entry width are truncated:
// the double-compressed format has no room for CodeInterRegionToll.
func Encode(t Tier, npa int, m ClassificationMap) []byte {
	hdr := Header(npa)
	buf := make([]byte, HeaderSize+t.Padding, t.Size())
	copy(buf, hdr[:])

	bits := t.BitsPerEntry()
	mask := byte(1<<bits - 1)
	var acc byte
	for i := 0; i < NXXCount; i++ {
		code, ok := m.Lookup(npa, NXXFirst+i)
		if !ok {
			code = CodeInvalid
		}
		acc = acc<<bits | byte(code)&mask
		if (i+1)%t.PerByte == 0 {
			buf = append(buf, acc)
			acc = 0
		}
	}
	return buf
}
