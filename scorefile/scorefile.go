// Package scorefile loads scores from disk. A file is either the raw score
// bytes or C source holding them as a byte array initializer, the form
// MIDI-to-score converters emit for inclusion in a sketch.
package scorefile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"
)

var (
	// ErrEmpty is returned for a file that holds no score bytes.
	ErrEmpty = errors.New("score is empty")

	// ErrNoArray is returned for C source without a brace initializer.
	ErrNoArray = errors.New("no array initializer found")
)

// Load reads the score at path.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	score, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return score, nil
}

// Parse returns the score held in data, decoding it first if it is C
// source.
func Parse(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if !IsSource(data) {
		return data, nil
	}
	return ParseSource(string(data))
}

// IsSource reports whether data looks like C source rather than a raw
// score. Raw scores nearly always contain command bytes of 0x80 and up,
// which never appear in ASCII text.
func IsSource(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 || (b < 0x20 && b != '\n' && b != '\r' && b != '\t') {
			return false
		}
	}
	return strings.ContainsRune(string(data), '{')
}

// ParseSource extracts the bytes of the first brace initializer in src.
// Elements may be decimal, hex or octal integers or character literals.
// Comments are ignored.
func ParseSource(src string) ([]byte, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanChars | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.IsIdentRune = func(ch rune, i int) bool {
		return ch == '_' || unicode.IsLetter(ch) || (unicode.IsDigit(ch) && i > 0)
	}
	s.Error = func(*scanner.Scanner, string) {}

	for tok := s.Scan(); tok != '{'; tok = s.Scan() {
		if tok == scanner.EOF {
			return nil, ErrNoArray
		}
	}

	var score []byte
	for {
		tok := s.Scan()
		switch tok {
		case '}':
			if len(score) == 0 {
				return nil, ErrEmpty
			}
			return score, nil
		case ',':
			continue
		case scanner.Int:
			v, err := strconv.ParseUint(s.TokenText(), 0, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: element %q is not a byte", s.Position.Line, s.TokenText())
			}
			score = append(score, byte(v))
		case scanner.Char:
			text := s.TokenText()
			if len(text) < 3 {
				return nil, fmt.Errorf("line %d: bad character literal %s", s.Position.Line, text)
			}
			v, _, _, err := strconv.UnquoteChar(text[1:len(text)-1], '\'')
			if err != nil || v > 0xff {
				return nil, fmt.Errorf("line %d: bad character literal %s", s.Position.Line, s.TokenText())
			}
			score = append(score, byte(v))
		case scanner.EOF:
			return nil, fmt.Errorf("line %d: unterminated initializer", s.Position.Line)
		default:
			return nil, fmt.Errorf("line %d: unexpected %q in initializer", s.Position.Line, s.TokenText())
		}
	}
}
