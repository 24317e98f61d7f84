package bencode

import "strconv"

type decoder struct {
	data  []byte
	depth int
}

// Decode parses data as exactly one bencoded value. Bytes left over after
// that value are reported as a ParseError.
func Decode(data []byte) (Value, error) {
	v, n, err := DecodePrefix(data)
	if err != nil {
		return nil, err
	}

	if n != len(data) {
		return nil, &ParseError{Offset: n, Reason: ReasonTrailingData}
	}

	return v, nil
}

// DecodePrefix parses one bencoded value from the start of data and returns it
// together with the number of bytes it occupied.
func DecodePrefix(data []byte) (Value, int, error) {
	d := &decoder{data: data}
	return d.parseValue(0)
}

// parseValue dispatches on the leading byte at pos. Every parse function
// returns the number of bytes consumed starting at pos.
func (d *decoder) parseValue(pos int) (Value, int, error) {
	if pos >= len(d.data) {
		return nil, 0, &ParseError{Offset: pos, Reason: ReasonUnterminated}
	}

	switch c := d.data[pos]; {
	case c == 'i':
		return d.parseInteger(pos)
	case isDigit(c):
		return d.parseString(pos)
	case c == 'l':
		return d.parseList(pos)
	case c == 'd':
		return d.parseDict(pos)
	default:
		return nil, 0, &ParseError{Offset: pos, Reason: ReasonUnexpected}
	}
}

func (d *decoder) parseString(pos int) (Value, int, error) {
	i := pos
	for i < len(d.data) && isDigit(d.data[i]) {
		i++
	}

	if i == len(d.data) {
		return nil, 0, &ParseError{Offset: i, Reason: ReasonUnterminated}
	}
	if d.data[i] != ':' {
		return nil, 0, &ParseError{Offset: i, Reason: ReasonBadLength}
	}

	lenBuf := d.data[pos:i]
	// leading zeros in string length are not allowed unless length is 0
	if lenBuf[0] == '0' && len(lenBuf) > 1 {
		return nil, 0, &ParseError{Offset: pos, Reason: ReasonBadLength}
	}

	length, err := strconv.ParseInt(string(lenBuf), 10, 64)
	if err != nil {
		return nil, 0, &ParseError{Offset: pos, Reason: ReasonBadLength}
	}

	start := i + 1
	if int64(len(d.data)-start) < length {
		return nil, 0, &ParseError{Offset: len(d.data), Reason: ReasonUnterminated}
	}

	end := start + int(length)
	s := make(String, length)
	copy(s, d.data[start:end])

	return s, end - pos, nil
}

func (d *decoder) parseInteger(pos int) (Value, int, error) {
	i := pos + 1
	negative := i < len(d.data) && d.data[i] == '-'
	if negative {
		i++
	}

	start := i
	for i < len(d.data) && isDigit(d.data[i]) {
		i++
	}

	if i == len(d.data) {
		return nil, 0, &ParseError{Offset: i, Reason: ReasonUnterminated}
	}
	if d.data[i] != 'e' || i == start {
		return nil, 0, &ParseError{Offset: i, Reason: ReasonNonDigit}
	}

	// "i0e" is the only integer allowed to start with a zero
	digits := d.data[start:i]
	if digits[0] == '0' && (len(digits) > 1 || negative) {
		return nil, 0, &ParseError{Offset: start, Reason: ReasonBadInteger}
	}

	n, err := strconv.ParseInt(string(d.data[pos+1:i]), 10, 64)
	if err != nil {
		return nil, 0, &ParseError{Offset: pos + 1, Reason: ReasonBadInteger}
	}

	return Int(n), i + 1 - pos, nil
}

func (d *decoder) parseList(pos int) (Value, int, error) {
	d.depth++
	defer func() { d.depth-- }()

	if d.depth > MaxDepth {
		return nil, 0, &ParseError{Offset: pos, Reason: ReasonTooDeep}
	}

	list := List{}
	i := pos + 1
	for {
		if i >= len(d.data) {
			return nil, 0, &ParseError{Offset: i, Reason: ReasonUnterminated}
		}
		if d.data[i] == 'e' {
			return list, i + 1 - pos, nil
		}

		v, n, err := d.parseValue(i)
		if err != nil {
			return nil, 0, err
		}

		list = append(list, v)
		i += n
	}
}

func (d *decoder) parseDict(pos int) (Value, int, error) {
	d.depth++
	defer func() { d.depth-- }()

	if d.depth > MaxDepth {
		return nil, 0, &ParseError{Offset: pos, Reason: ReasonTooDeep}
	}

	dict := Dict{}
	i := pos + 1
	for {
		if i >= len(d.data) {
			return nil, 0, &ParseError{Offset: i, Reason: ReasonUnterminated}
		}
		if d.data[i] == 'e' {
			return dict, i + 1 - pos, nil
		}

		k, n, err := d.parseValue(i)
		if err != nil {
			return nil, 0, err
		}

		key, ok := k.(String)
		if !ok {
			return nil, 0, &ParseError{Offset: i, Reason: ReasonKeyType}
		}
		if _, exists := dict[string(key)]; exists {
			return nil, 0, &ParseError{Offset: i, Reason: ReasonDuplicateKey}
		}
		i += n

		v, n, err := d.parseValue(i)
		if err != nil {
			return nil, 0, err
		}

		dict[string(key)] = v
		i += n
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
