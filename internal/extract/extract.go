// Package extract converts one raw mbox message block into a structured
// record using enmime for MIME parsing.
package extract

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"
	"github.com/rotisserie/eris"
)

// Record is the structured result of one message. Every field is
// best-effort: a missing header leaves its field empty and never fails
// extraction. Date holds the raw header value; normalization happens
// downstream.
type Record struct {
	From        string
	To          string
	Cc          string
	Bcc         string
	Subject     string
	Date        string
	MessageID   string
	InReplyTo   string
	References  string
	ContentType string
	BodyPlain   string
	BodyHTML    string
	GmailLabels string
}

// Extract parses one raw message block into a Record. It fails only when
// the MIME parser cannot interpret the bytes at all, even after the
// leading-whitespace repair.
func Extract(raw []byte) (*Record, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(repairLeadingWhitespace(raw)))
	if err != nil {
		return nil, eris.Wrap(err, "parse message")
	}

	rec := &Record{
		From:        env.GetHeader("From"),
		To:          env.GetHeader("To"),
		Cc:          env.GetHeader("Cc"),
		Bcc:         env.GetHeader("Bcc"),
		Subject:     env.GetHeader("Subject"),
		Date:        env.GetHeader("Date"),
		MessageID:   env.GetHeader("Message-ID"),
		InReplyTo:   env.GetHeader("In-Reply-To"),
		References:  env.GetHeader("References"),
		ContentType: env.GetHeader("Content-Type"),
		GmailLabels: env.GetHeader("X-Gmail-Labels"),
	}

	walkParts(env.Root, rec)
	return rec, nil
}

// repairLeadingWhitespace strips leading spaces/tabs from non-blank lines.
// Some archived messages carry spurious indentation that breaks strict
// header-folding parsers; stripping it trades a small risk of corrupting a
// legitimate continuation line for robustness against the far more common
// malformed case.
func repairLeadingWhitespace(raw []byte) []byte {
	lines := bytes.Split(raw, []byte("\n"))
	for i, line := range lines {
		if len(line) == 0 || (line[0] != ' ' && line[0] != '\t') {
			continue
		}
		if trimmed := bytes.TrimLeft(line, " \t"); len(bytes.TrimRight(trimmed, "\r")) > 0 {
			lines[i] = trimmed
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// walkParts flattens the body-part tree depth-first into the record. Each
// leaf overwrites its field, so a message with several alternatives keeps
// the last one in tree order. Non-HTML leaves land in BodyPlain whatever
// their media type; inherited behavior, kept.
func walkParts(part *enmime.Part, rec *Record) {
	if part == nil {
		return
	}
	if part.FirstChild == nil {
		if strings.Contains(strings.ToLower(part.ContentType), "text/html") {
			rec.BodyHTML = string(part.Content)
		} else {
			rec.BodyPlain = string(part.Content)
		}
		return
	}
	for child := part.FirstChild; child != nil; child = child.NextSibling {
		walkParts(child, rec)
	}
}
