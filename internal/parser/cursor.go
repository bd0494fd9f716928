package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// cursor walks one statement line from left to right.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) rest() string {
	return c.s[c.pos:]
}

func (c *cursor) atEnd() bool {
	return strings.TrimSpace(c.rest()) == ""
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.s) {
		r, size := utf8.DecodeRuneInString(c.s[c.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		c.pos += size
	}
}

// consume advances past prefix if the remaining input starts with it.
func (c *cursor) consume(prefix string) bool {
	if strings.HasPrefix(c.rest(), prefix) {
		c.pos += len(prefix)
		return true
	}
	return false
}

// consumeWord is consume for keywords: the prefix must not run into a letter.
func (c *cursor) consumeWord(word string) bool {
	rest := c.rest()
	if !strings.HasPrefix(rest, word) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(rest[len(word):])
	if unicode.IsLetter(next) || unicode.IsDigit(next) {
		return false
	}
	c.pos += len(word)
	return true
}

// until returns the text up to delim and moves past delim.
func (c *cursor) until(delim string) (string, bool) {
	i := strings.Index(c.rest(), delim)
	if i < 0 {
		return "", false
	}
	text := c.rest()[:i]
	c.pos += i + len(delim)
	return text, true
}

// untilLast is until for the last occurrence of delim on the line.
func (c *cursor) untilLast(delim string) (string, bool) {
	i := strings.LastIndex(c.rest(), delim)
	if i < 0 {
		return "", false
	}
	text := c.rest()[:i]
	c.pos += i + len(delim)
	return text, true
}

// digits reads a positive decimal integer.
func (c *cursor) digits() (int, bool) {
	start := c.pos
	for c.pos < len(c.s) && c.s[c.pos] >= '0' && c.s[c.pos] <= '9' {
		c.pos++
	}
	if c.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(c.s[start:c.pos])
	if err != nil || n < 1 {
		c.pos = start
		return 0, false
	}
	return n, true
}
