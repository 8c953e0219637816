package extract

import (
	"strings"
	"unicode/utf16"
)

// tjSpaceThreshold is the TJ kerning offset (thousandths of an em) treated as a word gap.
const tjSpaceThreshold = -200

type operand struct {
	str   []byte
	isStr bool
	num   float64
}

// scanContent recovers text from a page content stream by interpreting the
// string operands of the text-showing operators.
func scanContent(content []byte) string {
	s := &contentScanner{src: content}
	s.run()
	return s.out.String()
}

type contentScanner struct {
	src      []byte
	pos      int
	out      strings.Builder
	operands []operand
	array    []operand
	inArray  bool
}

func (s *contentScanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isSpace(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
				s.pos++
			}
		case c == '(':
			s.push(operand{str: s.literal(), isStr: true})
		case c == '<':
			if s.peek(1) == '<' {
				s.pos += 2
				continue
			}
			s.push(operand{str: s.hex(), isStr: true})
		case c == '>':
			s.pos++
		case c == '[':
			s.inArray = true
			s.array = s.array[:0]
			s.pos++
		case c == ']':
			s.inArray = false
			s.pos++
		case c == '/':
			s.pos++
			s.skipRegular()
		case c == '{' || c == '}' || c == ')':
			s.pos++
		case isNumberStart(c):
			s.push(operand{num: s.number()})
		default:
			start := s.pos
			s.skipRegular()
			s.operator(string(s.src[start:s.pos]))
		}
	}
}

func (s *contentScanner) push(op operand) {
	if s.inArray {
		s.array = append(s.array, op)
		return
	}
	s.operands = append(s.operands, op)
}

func (s *contentScanner) operator(op string) {
	switch op {
	case "Tj":
		s.showLast()
	case "'", "\"":
		s.newline()
		s.showLast()
	case "TJ":
		for _, item := range s.array {
			if item.isStr {
				s.write(item.str)
			} else if item.num <= tjSpaceThreshold {
				s.out.WriteByte(' ')
			}
		}
	case "T*", "Td", "TD", "ET":
		s.newline()
	case "BI":
		s.skipInlineImage()
	}
	s.operands = s.operands[:0]
	s.array = s.array[:0]
}

func (s *contentScanner) showLast() {
	for i := len(s.operands) - 1; i >= 0; i-- {
		if s.operands[i].isStr {
			s.write(s.operands[i].str)
			return
		}
	}
}

func (s *contentScanner) newline() {
	if s.out.Len() == 0 {
		return
	}
	str := s.out.String()
	if str[len(str)-1] != '\n' {
		s.out.WriteByte('\n')
	}
}

// write decodes a PDF string: UTF-16BE when it carries a BOM, Latin-1 otherwise.
func (s *contentScanner) write(raw []byte) {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, len(raw)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		for _, r := range utf16.Decode(units) {
			if r >= 0x20 {
				s.out.WriteRune(r)
			}
		}
		return
	}
	for _, b := range raw {
		switch {
		case b == '\t':
			s.out.WriteByte(' ')
		case b < 0x20, b >= 0x7F && b < 0xA0:
		default:
			s.out.WriteRune(rune(b))
		}
	}
}

func (s *contentScanner) literal() []byte {
	s.pos++ // (
	var buf []byte
	depth := 1
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '\\':
			if s.pos >= len(s.src) {
				return buf
			}
			e := s.src[s.pos]
			s.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r':
				if s.pos < len(s.src) && s.src[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '7'; k++ {
						v = v*8 + int(s.src[s.pos]-'0')
						s.pos++
					}
					buf = append(buf, byte(v))
				} else {
					buf = append(buf, e)
				}
			}
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return buf
			}
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
	return buf
}

func (s *contentScanner) hex() []byte {
	s.pos++ // <
	var (
		buf  []byte
		hi   byte
		half bool
	)
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if !half {
			hi, half = v, true
			continue
		}
		buf = append(buf, hi<<4|v)
		half = false
	}
	if half {
		buf = append(buf, hi<<4)
	}
	return buf
}

func (s *contentScanner) number() float64 {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) && (isDigit(s.src[s.pos]) || s.src[s.pos] == '.') {
		s.pos++
	}
	var (
		v        float64
		frac     float64
		neg      bool
		afterDot bool
	)
	for _, c := range s.src[start:s.pos] {
		switch {
		case c == '-':
			neg = true
		case c == '.':
			afterDot, frac = true, 0.1
		case isDigit(c):
			if afterDot {
				v += float64(c-'0') * frac
				frac /= 10
			} else {
				v = v*10 + float64(c-'0')
			}
		}
	}
	if neg {
		v = -v
	}
	return v
}

// skipInlineImage advances past the binary payload of an inline image (ID ... EI).
func (s *contentScanner) skipInlineImage() {
	for s.pos+1 < len(s.src) {
		if s.src[s.pos] == 'I' && s.src[s.pos+1] == 'D' && (s.pos == 0 || isSpace(s.src[s.pos-1])) {
			s.pos += 2
			break
		}
		s.pos++
	}
	for s.pos+2 < len(s.src) {
		if isSpace(s.src[s.pos]) && s.src[s.pos+1] == 'E' && s.src[s.pos+2] == 'I' &&
			(s.pos+3 == len(s.src) || isSpace(s.src[s.pos+3])) {
			s.pos += 3
			return
		}
		s.pos++
	}
	s.pos = len(s.src)
}

func (s *contentScanner) skipRegular() {
	for s.pos < len(s.src) && !isSpace(s.src[s.pos]) && !isDelimiter(s.src[s.pos]) {
		s.pos++
	}
}

func (s *contentScanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.'
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
