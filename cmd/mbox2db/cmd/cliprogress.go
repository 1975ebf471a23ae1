package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/mboxtools/mbox2db/internal/pipeline"
)

// CLIProgress implements pipeline.Progress for terminal output: a single
// carriage-return status line while converting, cleared on completion.
type CLIProgress struct {
	out       io.Writer
	startTime time.Time
	wrote     bool
}

func (p *CLIProgress) OnStart() {
	p.startTime = time.Now()
	fmt.Fprint(p.out, "Starting conversion...\r")
	p.wrote = true
}

func (p *CLIProgress) OnProgress(converted, skipped, failed int64) {
	if p.startTime.IsZero() {
		p.startTime = time.Now()
	}
	line := fmt.Sprintf("Processed %d emails (%d skipped)", converted+skipped+failed, skipped)
	if failed > 0 {
		line += fmt.Sprintf(" [%d failed]", failed)
	}
	// Pad so a shrinking line doesn't leave stale characters behind.
	fmt.Fprintf(p.out, "\r%-60s", line)
	p.wrote = true
}

func (p *CLIProgress) OnComplete(*pipeline.Summary) {
	if p.wrote {
		fmt.Fprintf(p.out, "\r%-60s\r", "")
	}
}
