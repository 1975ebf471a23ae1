package extract

import (
	"strings"
	"testing"
)

func TestExtractSinglePartPlain(t *testing.T) {
	raw := strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"From: Alice <alice@example.com>",
		"To: bob@example.com",
		"Subject: Hello",
		"Date: Thu, 11 Jun 2009 14:03:01 -0400",
		"Message-ID: <abc@example.com>",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Just plain text.",
		"",
	}, "\n")

	rec, err := Extract([]byte(raw))
	if err != nil {
		t.Fatalf("Extract(): %v", err)
	}

	if rec.From != "Alice <alice@example.com>" {
		t.Errorf("From = %q", rec.From)
	}
	if rec.To != "bob@example.com" {
		t.Errorf("To = %q", rec.To)
	}
	if rec.Subject != "Hello" {
		t.Errorf("Subject = %q", rec.Subject)
	}
	if rec.Date != "Thu, 11 Jun 2009 14:03:01 -0400" {
		t.Errorf("Date = %q", rec.Date)
	}
	if rec.MessageID != "<abc@example.com>" {
		t.Errorf("MessageID = %q", rec.MessageID)
	}
	if !strings.Contains(rec.BodyPlain, "Just plain text.") {
		t.Errorf("BodyPlain = %q", rec.BodyPlain)
	}
	if rec.BodyHTML != "" {
		t.Errorf("BodyHTML should be empty for a plain message, got %q", rec.BodyHTML)
	}
	if rec.Cc != "" || rec.Bcc != "" || rec.InReplyTo != "" {
		t.Errorf("absent headers should stay empty: cc=%q bcc=%q irt=%q", rec.Cc, rec.Bcc, rec.InReplyTo)
	}
}

func multipartMessage(htmlFirst bool) string {
	plain := strings.Join([]string{
		"--BOUNDARY",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain body",
	}, "\n")
	html := strings.Join([]string{
		"--BOUNDARY",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html body</p>",
	}, "\n")
	first, second := plain, html
	if htmlFirst {
		first, second = html, plain
	}
	return strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"From: alice@example.com",
		"Subject: Multipart",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="BOUNDARY"`,
		"",
		first,
		second,
		"--BOUNDARY--",
		"",
	}, "\n")
}

func TestExtractMultipartBothOrders(t *testing.T) {
	for _, htmlFirst := range []bool{false, true} {
		rec, err := Extract([]byte(multipartMessage(htmlFirst)))
		if err != nil {
			t.Fatalf("Extract(htmlFirst=%v): %v", htmlFirst, err)
		}
		if !strings.Contains(rec.BodyPlain, "plain body") {
			t.Errorf("htmlFirst=%v: BodyPlain = %q", htmlFirst, rec.BodyPlain)
		}
		if !strings.Contains(rec.BodyHTML, "html body") {
			t.Errorf("htmlFirst=%v: BodyHTML = %q", htmlFirst, rec.BodyHTML)
		}
	}
}

func TestExtractLastLeafWins(t *testing.T) {
	raw := strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"From: alice@example.com",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain",
		"",
		"first alternative",
		"--BOUNDARY",
		"Content-Type: text/plain",
		"",
		"second alternative",
		"--BOUNDARY--",
		"",
	}, "\n")

	rec, err := Extract([]byte(raw))
	if err != nil {
		t.Fatalf("Extract(): %v", err)
	}
	if !strings.Contains(rec.BodyPlain, "second alternative") {
		t.Errorf("BodyPlain should keep the last leaf, got %q", rec.BodyPlain)
	}
	if strings.Contains(rec.BodyPlain, "first alternative") {
		t.Errorf("BodyPlain should be overwritten, got %q", rec.BodyPlain)
	}
}

func TestExtractGmailLabels(t *testing.T) {
	raw := strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"From: alice@example.com",
		"X-Gmail-Labels: Inbox,Spam",
		"",
		"body",
		"",
	}, "\n")

	rec, err := Extract([]byte(raw))
	if err != nil {
		t.Fatalf("Extract(): %v", err)
	}
	if rec.GmailLabels != "Inbox,Spam" {
		t.Errorf("GmailLabels = %q", rec.GmailLabels)
	}
}

func TestRepairLeadingWhitespace(t *testing.T) {
	raw := strings.Join([]string{
		"From: alice@example.com",
		"  Subject: Indented By Mistake",
		"\tX-Custom: tabbed",
		"   ",
		"",
		"body",
	}, "\n")

	got := string(repairLeadingWhitespace([]byte(raw)))
	want := strings.Join([]string{
		"From: alice@example.com",
		"Subject: Indented By Mistake",
		"X-Custom: tabbed",
		"   ",
		"",
		"body",
	}, "\n")
	if got != want {
		t.Errorf("repairLeadingWhitespace:\ngot  %q\nwant %q", got, want)
	}
}

func TestExtractSpuriouslyIndentedHeader(t *testing.T) {
	raw := strings.Join([]string{
		"From alice@example.com Mon Jan 1 00:00:00 2024",
		"From: alice@example.com",
		" Subject: Rescued",
		"",
		"body",
		"",
	}, "\n")

	rec, err := Extract([]byte(raw))
	if err != nil {
		t.Fatalf("Extract(): %v", err)
	}
	if rec.Subject != "Rescued" {
		t.Errorf("Subject = %q, want header recovered after whitespace repair", rec.Subject)
	}
}
