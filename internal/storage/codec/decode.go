package codec

import (
	"bytes"
	"errors"
	"math"
	"strconv"
)

// maxDepth bounds array nesting so hostile payloads cannot exhaust the stack.
const maxDepth = 64

var (
	errSyntax   = errors.New("codec: syntax error")
	errTooDeep  = errors.New("codec: nesting too deep")
	errOverflow = errors.New("codec: declared length out of range")
)

// Decode parses a wire-format payload. It never fails: an empty or wholly
// unparsable payload yields an empty map, and a single malformed segment is
// kept as raw text (numeric text becomes int64 or float64) without
// affecting the segments around it.
func Decode(data []byte) map[string]any {
	out := make(map[string]any)
	d := decoder{buf: data}

	for d.pos < len(d.buf) {
		bar := bytes.IndexByte(d.buf[d.pos:], '|')
		if bar < 0 {
			break
		}
		key := string(d.buf[d.pos : d.pos+bar])
		start := d.pos + bar + 1
		d.pos = start

		v, err := d.value(0)
		if err == nil {
			if key != "" {
				out[key] = v
			}
			continue
		}

		end := d.resync(start)
		if key != "" {
			out[key] = rawValue(d.buf[start:end])
		}
		d.pos = end
	}
	return out
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	if d.pos >= len(d.buf) {
		return nil, errSyntax
	}

	tag := d.buf[d.pos]
	d.pos++
	if tag == 'N' {
		return nil, d.expect(';')
	}
	if err := d.expect(':'); err != nil {
		return nil, err
	}

	switch tag {
	case 'b':
		text, err := d.until(';')
		if err != nil {
			return nil, err
		}
		switch string(text) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, errSyntax
	case 'i':
		text, err := d.until(';')
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(string(text), 10, 64)
		if err != nil {
			return nil, errSyntax
		}
		return n, nil
	case 'd':
		text, err := d.until(';')
		if err != nil {
			return nil, err
		}
		return parseFloat(string(text))
	case 's':
		return d.str()
	case 'a':
		return d.array(depth)
	}
	return nil, errSyntax
}

// str parses `<len>:"<bytes>";` after the s: tag.
func (d *decoder) str() (string, error) {
	n, err := d.length()
	if err != nil {
		return "", err
	}
	if err := d.expect('"'); err != nil {
		return "", err
	}
	if n > len(d.buf)-d.pos {
		return "", errOverflow
	}
	s := string(d.buf[d.pos : d.pos+n])
	d.pos += n
	if err := d.expect('"'); err != nil {
		return "", err
	}
	return s, d.expect(';')
}

// array parses `<n>:{<key><value>...}` after the a: tag.
func (d *decoder) array(depth int) (any, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	if err := d.expect('{'); err != nil {
		return nil, err
	}
	// Every entry takes at least 6 bytes ("i:0;N;"), which caps hostile counts.
	if n > (len(d.buf)-d.pos)/6 {
		return nil, errOverflow
	}

	type entry struct {
		key   string
		index int64
		isInt bool
		val   any
	}
	entries := make([]entry, 0, n)
	sequential := true

	for i := 0; i < n; i++ {
		var e entry
		if d.pos+1 >= len(d.buf) || d.buf[d.pos+1] != ':' {
			return nil, errSyntax
		}
		switch d.buf[d.pos] {
		case 'i':
			d.pos += 2
			text, err := d.until(';')
			if err != nil {
				return nil, err
			}
			e.index, err = strconv.ParseInt(string(text), 10, 64)
			if err != nil {
				return nil, errSyntax
			}
			e.isInt = true
			e.key = string(text)
		case 's':
			d.pos += 2
			if e.key, err = d.str(); err != nil {
				return nil, err
			}
		default:
			return nil, errSyntax
		}
		if e.val, err = d.value(depth + 1); err != nil {
			return nil, err
		}
		if !e.isInt || e.index != int64(i) {
			sequential = false
		}
		entries = append(entries, e)
	}
	if err := d.expect('}'); err != nil {
		return nil, err
	}

	if sequential {
		list := make([]any, len(entries))
		for i, e := range entries {
			list[i] = e.val
		}
		return list, nil
	}
	m := make(map[string]any, len(entries))
	for _, e := range entries {
		m[e.key] = e.val
	}
	return m, nil
}

// length parses `<digits>:`.
func (d *decoder) length() (int, error) {
	text, err := d.until(':')
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(text))
	if err != nil || n < 0 {
		return 0, errSyntax
	}
	return n, nil
}

func (d *decoder) expect(c byte) error {
	if d.pos >= len(d.buf) || d.buf[d.pos] != c {
		return errSyntax
	}
	d.pos++
	return nil
}

// until returns the bytes up to delim and consumes the delimiter.
func (d *decoder) until(delim byte) ([]byte, error) {
	i := bytes.IndexByte(d.buf[d.pos:], delim)
	if i < 0 {
		return nil, errSyntax
	}
	text := d.buf[d.pos : d.pos+i]
	d.pos += i + 1
	return text, nil
}

// resync finds the start of the next segment after a malformed value: an
// identifier followed by '|' that directly follows a ';' or '}'. It returns
// len(buf) when there is none.
func (d *decoder) resync(from int) int {
	for p := from + 1; p < len(d.buf); p++ {
		prev := d.buf[p-1]
		if prev != ';' && prev != '}' {
			continue
		}
		if n := identLen(d.buf[p:]); n > 0 && p+n < len(d.buf) && d.buf[p+n] == '|' {
			return p
		}
	}
	return len(d.buf)
}

// identLen returns the length of the identifier at the start of b, or 0.
// Identifiers start with a letter, underscore or high byte and continue with
// those or digits.
func identLen(b []byte) int {
	for i, c := range b {
		switch {
		case c == '_' || c >= 0x7f || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return i
		}
	}
	return len(b)
}

func parseFloat(text string) (float64, error) {
	switch text {
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NAN":
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errSyntax
	}
	return f, nil
}

// rawValue keeps an unparsable segment as text, converting plain numbers.
func rawValue(b []byte) any {
	text := string(b)
	if !isNumeric(text) {
		return text
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

// isNumeric accepts optionally signed decimal numbers with an optional
// fraction and exponent. Words like "Inf" or hex forms are rejected.
func isNumeric(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
