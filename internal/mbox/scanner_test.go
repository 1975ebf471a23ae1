package mbox

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collect(t *testing.T, input string) []string {
	t.Helper()
	s := NewScanner(strings.NewReader(input))
	var blocks []string
	for {
		block, err := s.Next()
		if err == io.EOF {
			return blocks
		}
		if err != nil {
			t.Fatalf("Next(): %v", err)
		}
		blocks = append(blocks, string(block))
	}
}

func TestScannerSplitsMessages(t *testing.T) {
	input := strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"Subject: One",
		"",
		"Body one",
		"From bob@example.com Mon Jan 1 00:00:01 2024",
		"Subject: Two",
		"",
		"Body two",
	}, "\n")

	got := collect(t, input)
	want := []string{
		"From alice@example.com Mon Jan 1 00:00:00 2024\nSubject: One\n\nBody one\n",
		"From bob@example.com Mon Jan 1 00:00:01 2024\nSubject: Two\n\nBody two\n",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestScannerNoSeparatorEmitsOneBlock(t *testing.T) {
	got := collect(t, "Subject: Lonely\n\nNo envelope here\n")
	if len(got) != 1 {
		t.Fatalf("got %d blocks, want 1", len(got))
	}
	if got[0] != "Subject: Lonely\n\nNo envelope here\n" {
		t.Errorf("unexpected block: %q", got[0])
	}
}

func TestScannerPreambleBecomesOwnBlock(t *testing.T) {
	input := "preamble line\nFrom alice@example.com Mon Jan 1 00:00:00 2024\nSubject: One\n"
	got := collect(t, input)
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2", len(got))
	}
	if got[0] != "preamble line\n" {
		t.Errorf("preamble block = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "From alice@example.com") {
		t.Errorf("second block should start with the separator, got %q", got[1])
	}
}

// Body lines that merely start with "From " are true boundaries to this
// scanner; the mis-split is documented behavior.
func TestScannerMisSplitsQuotedFromLines(t *testing.T) {
	input := strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"Subject: Forwarded",
		"",
		"From bob, who wrote earlier:",
		"hello",
	}, "\n")

	got := collect(t, input)
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2 (quoted From line splits)", len(got))
	}
	if got[1] != "From bob, who wrote earlier:\nhello\n" {
		t.Errorf("second block = %q", got[1])
	}
}

func TestScannerNormalizesCRLF(t *testing.T) {
	input := "From alice@example.com Mon Jan 1 00:00:00 2024\r\nSubject: One\r\n\r\nBody\r\n"
	got := collect(t, input)
	if len(got) != 1 {
		t.Fatalf("got %d blocks, want 1", len(got))
	}
	if strings.Contains(got[0], "\r") {
		t.Errorf("block still contains CR: %q", got[0])
	}
	if got[0] != "From alice@example.com Mon Jan 1 00:00:00 2024\nSubject: One\n\nBody\n" {
		t.Errorf("unexpected block: %q", got[0])
	}
}

func TestScannerNoFinalNewline(t *testing.T) {
	got := collect(t, "From alice@example.com Mon Jan 1 00:00:00 2024\nSubject: One")
	if len(got) != 1 {
		t.Fatalf("got %d blocks, want 1", len(got))
	}
	if !strings.HasSuffix(got[0], "Subject: One\n") {
		t.Errorf("last line should gain a trailing newline, got %q", got[0])
	}
}

func TestScannerEmptyInput(t *testing.T) {
	s := NewScanner(strings.NewReader(""))
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next() on empty input = %v, want io.EOF", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(strings.NewReader("From a@b Mon Jan 1 00:00:00 2024\nSubject: x\n"), 1<<20); err != nil {
		t.Errorf("Validate on mbox input: %v", err)
	}
	if err := Validate(strings.NewReader("just some text\nwithout separators\n"), 1<<20); err == nil {
		t.Error("Validate accepted input without separators")
	}
}
