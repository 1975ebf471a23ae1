// Package pipeline drives the mbox conversion: scan message blocks, extract
// records, normalize dates, apply the retention filter and hand the result
// to the storage sink.
//
// Error recovery is per message: a block the MIME parser cannot interpret
// is logged with its ordinal and skipped; the batch never aborts for a bad
// message. Only setup failures (input stream, database) are fatal.
package pipeline

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mboxtools/mbox2db/internal/extract"
	"github.com/mboxtools/mbox2db/internal/filter"
	"github.com/mboxtools/mbox2db/internal/maildate"
	"github.com/mboxtools/mbox2db/internal/mbox"
	"github.com/mboxtools/mbox2db/internal/store"
)

// extractMessage is swappable in tests to exercise the parse-failure path.
var extractMessage = extract.Extract

// Sink accepts converted email rows one at a time.
// *store.Batch satisfies it.
type Sink interface {
	Insert(*store.Email) error
}

// Progress provides callbacks for conversion progress reporting.
type Progress interface {
	OnStart()
	OnProgress(converted, skipped, failed int64)
	OnComplete(summary *Summary)
}

// NullProgress is a no-op implementation of Progress.
type NullProgress struct{}

func (NullProgress) OnStart()                       {}
func (NullProgress) OnProgress(int64, int64, int64) {}
func (NullProgress) OnComplete(*Summary)            {}

// Options configures a conversion run.
type Options struct {
	IncludeSpam         bool
	IncludeTrash        bool
	IncludeSpamAndTrash bool

	// ProgressInterval controls how often (in processed messages) OnProgress
	// fires. If zero, a default of 100 is used.
	ProgressInterval int

	// Progress is optional; defaults to NullProgress.
	Progress Progress

	// Logger is optional; defaults to slog.Default().
	Logger *slog.Logger
}

// Summary reports the outcome of a conversion run.
type Summary struct {
	Converted int64 // rows handed to the sink
	Skipped   int64 // rejected by the retention filter
	Failed    int64 // blocks the MIME parser could not interpret
	Duration  time.Duration
}

// Processed returns the total number of message blocks seen.
func (s *Summary) Processed() int64 {
	return s.Converted + s.Skipped + s.Failed
}

// Run converts the mbox stream r and writes retained records to sink.
//
// Processing is strictly sequential with one block in memory at a time.
// Cancellation is honored between blocks: when ctx is done, Run returns
// ctx.Err() and the caller decides what happens to the open batch.
func Run(ctx context.Context, r io.Reader, sink Sink, opts Options) (*Summary, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	progress := opts.Progress
	if progress == nil {
		progress = NullProgress{}
	}
	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = 100
	}

	start := time.Now()
	summary := &Summary{}
	progress.OnStart()

	scanner := mbox.NewScanner(r)
	var seq int64
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		block, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, eris.Wrap(err, "read mbox")
		}
		seq++

		rec, err := extractMessage(block)
		if err != nil {
			summary.Failed++
			log.Warn("failed to parse message", "ordinal", seq, "error", err)
		} else if filter.Skip(rec.GmailLabels, opts.IncludeSpam, opts.IncludeTrash, opts.IncludeSpamAndTrash) {
			summary.Skipped++
		} else {
			if err := sink.Insert(toEmail(rec)); err != nil {
				return summary, eris.Wrapf(err, "store message %d", seq)
			}
			summary.Converted++
		}

		if summary.Processed()%int64(interval) == 0 {
			progress.OnProgress(summary.Converted, summary.Skipped, summary.Failed)
		}
	}

	summary.Duration = time.Since(start)
	progress.OnComplete(summary)
	return summary, nil
}

// toEmail maps an extracted record to its storage row. A date that cannot
// be normalized stores as NULL; the raw value is kept either way.
// GmailLabels is consumed by the filter and is not persisted.
func toEmail(rec *extract.Record) *store.Email {
	var dateParsed sql.NullString
	if normalized, ok := maildate.Normalize(rec.Date); ok {
		dateParsed = sql.NullString{String: normalized, Valid: true}
	}

	return &store.Email{
		From:        rec.From,
		To:          rec.To,
		Cc:          rec.Cc,
		Bcc:         rec.Bcc,
		Subject:     rec.Subject,
		Date:        rec.Date,
		DateParsed:  dateParsed,
		MessageID:   rec.MessageID,
		InReplyTo:   rec.InReplyTo,
		References:  rec.References,
		ContentType: rec.ContentType,
		BodyPlain:   rec.BodyPlain,
		BodyHTML:    rec.BodyHTML,
	}
}
