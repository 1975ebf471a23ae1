// Package mbox splits an mbox stream into raw per-message blocks.
//
// A line is treated as a message boundary iff it begins with the literal
// prefix "From " — the classic envelope separator. That heuristic is
// deliberately naive: a body line quoting a forwarded envelope ("From
// someone@...") is indistinguishable from a real separator and will split
// the message. Gmail Takeout and similar exports do not escape such lines
// consistently, so the scanner preserves the historical behavior instead of
// guessing. The scanner itself never rejects input; malformed separators
// just produce a different split.
package mbox

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const maxLineBytes = 32 << 20 // 32 MiB

var fromPrefix = []byte("From ")

// Scanner yields successive raw message blocks from an mbox stream.
// It holds at most one block in memory at a time.
type Scanner struct {
	br  *bufio.Reader
	buf bytes.Buffer
	eof bool
}

// NewScanner creates a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{br: bufio.NewReader(r)}
}

// Next returns the next raw message block, including its leading "From "
// envelope line. Every line in the block is normalized to end with a single
// '\n'. Returns io.EOF when the stream is exhausted.
//
// Lines appearing before the first separator accumulate into a block of
// their own; the first separator then closes it like any other boundary.
func (s *Scanner) Next() ([]byte, error) {
	if s.eof && s.buf.Len() == 0 {
		return nil, io.EOF
	}

	for !s.eof {
		line, err := s.readLine()
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == io.EOF {
			s.eof = true
		}

		if len(line) > 0 {
			if bytes.HasPrefix(line, fromPrefix) && s.buf.Len() > 0 {
				block := append([]byte(nil), s.buf.Bytes()...)
				s.buf.Reset()
				s.appendLine(line)
				return block, nil
			}
			s.appendLine(line)
		}
	}

	if s.buf.Len() == 0 {
		return nil, io.EOF
	}
	block := append([]byte(nil), s.buf.Bytes()...)
	s.buf.Reset()
	return block, nil
}

func (s *Scanner) appendLine(line []byte) {
	s.buf.Write(bytes.TrimRight(line, "\r\n"))
	s.buf.WriteByte('\n')
}

// readLine reads one line including its delimiter. bufio returns
// ErrBufferFull when a line outgrows the internal buffer; keep accumulating
// so pathological lines don't break the split.
func (s *Scanner) readLine() ([]byte, error) {
	var out []byte
	for {
		b, err := s.br.ReadBytes('\n')
		out = append(out, b...)
		if len(out) > maxLineBytes {
			return nil, fmt.Errorf("mbox line exceeds max length (%d bytes)", maxLineBytes)
		}
		if err == nil {
			return out, nil
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return out, err
	}
}

// Validate reads up to maxBytes from r and reports whether the stream looks
// like an mbox file (contains at least one "From " separator). This is a
// heuristic preflight; a negative result is advisory, not fatal — a file
// with no separators still converts as a single message.
func Validate(r io.Reader, maxBytes int64) error {
	if maxBytes <= 0 {
		return fmt.Errorf("maxBytes must be > 0")
	}
	br := bufio.NewReader(io.LimitReader(r, maxBytes))
	for {
		line, err := br.ReadBytes('\n')
		if bytes.HasPrefix(line, fromPrefix) {
			return nil
		}
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("no \"From \" separators found (not an mbox file?)")
			}
			return err
		}
	}
}
