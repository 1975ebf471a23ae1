package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mboxtools/mbox2db/internal/mbox"
	"github.com/mboxtools/mbox2db/internal/pipeline"
	"github.com/mboxtools/mbox2db/internal/store"
)

var (
	convertOutput       string
	convertDestructive  bool
	convertIncludeSpam  bool
	convertIncludeTrash bool
	convertIncludeBoth  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.mbox>",
	Short: "Convert an mbox file to a SQLite database",
	Long: `Convert an mbox file to a SQLite database.

The output defaults to YYYY-MM-DD-emails.db in the configured output
directory; if that file exists, a numbered suffix is appended instead of
overwriting. Pass --destructive to write a fixed emails.db and overwrite it.

Examples:
  mbox2db convert takeout.mbox
  mbox2db convert takeout.mbox -o archive.db
  mbox2db convert takeout.mbox --include-spam`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]

		f, err := os.Open(inputPath)
		if err != nil {
			return eris.Wrapf(err, "open input file %s", inputPath)
		}
		defer f.Close()

		// Advisory only: a file with no separators still converts as a
		// single message.
		if err := mbox.Validate(f, 8<<20); err != nil {
			logger.Warn("input may not be an mbox file", "file", inputPath, "error", err)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return eris.Wrap(err, "rewind input file")
		}

		dbPath := chooseOutputPath(convertOutput, cfg.Output.Dir, convertDestructive, time.Now())
		if convertDestructive {
			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return eris.Wrapf(err, "remove existing database %s", dbPath)
			}
		}

		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.InitSchema(); err != nil {
			return err
		}

		batch, err := st.BeginBatch()
		if err != nil {
			return err
		}

		opts := pipeline.Options{
			IncludeSpam:         convertIncludeSpam || cfg.Retention.IncludeSpam,
			IncludeTrash:        convertIncludeTrash || cfg.Retention.IncludeTrash,
			IncludeSpamAndTrash: convertIncludeBoth || cfg.Retention.IncludeSpamAndTrash,
			Progress:            &CLIProgress{out: cmd.OutOrStdout()},
			Logger:              logger,
		}

		summary, err := pipeline.Run(cmd.Context(), f, batch, opts)
		if err != nil {
			batch.Rollback()
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted; nothing committed.")
			}
			return err
		}

		if err := batch.Commit(); err != nil {
			return eris.Wrap(err, "commit batch")
		}

		printSummary(cmd, summary, opts, dbPath)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output database file path (default: YYYY-MM-DD-emails.db)")
	convertCmd.Flags().BoolVarP(&convertDestructive, "destructive", "d", false, "overwrite existing database instead of auto-incrementing filename")
	convertCmd.Flags().BoolVar(&convertIncludeSpam, "include-spam", false, "include emails marked as Spam")
	convertCmd.Flags().BoolVar(&convertIncludeTrash, "include-trash", false, "include emails marked as Trash")
	convertCmd.Flags().BoolVar(&convertIncludeBoth, "include-spam-and-trash", false, "include both Spam and Trash emails")
	rootCmd.AddCommand(convertCmd)
}

// outputPath picks the database file path. An explicit -o wins; destructive
// mode uses a fixed name; otherwise a date-stamped name that never clobbers
// an existing file.
func chooseOutputPath(explicit, dir string, destructive bool, now time.Time) string {
	if explicit != "" {
		return explicit
	}
	if destructive {
		return filepath.Join(dir, "emails.db")
	}

	today := now.Format("2006-01-02")
	base := filepath.Join(dir, today+"-emails.db")
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return base
	}
	for counter := 1; counter < 10000; counter++ {
		numbered := filepath.Join(dir, fmt.Sprintf("%s-emails-%04d.db", today, counter))
		if _, err := os.Stat(numbered); os.IsNotExist(err) {
			return numbered
		}
	}
	return base
}

// printSummary reports the final counts, naming the flag that would have
// included whatever was skipped.
func printSummary(cmd *cobra.Command, summary *pipeline.Summary, opts pipeline.Options, outputPath string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converted %d emails in %s\n", summary.Converted, summary.Duration.Round(time.Millisecond))
	if summary.Failed > 0 {
		fmt.Fprintf(out, "    %d emails failed to parse (see warnings above)\n", summary.Failed)
	}
	if summary.Skipped > 0 && !opts.IncludeSpamAndTrash {
		switch {
		case !opts.IncludeSpam && !opts.IncludeTrash:
			fmt.Fprintf(out, "    %d Spam/Trash emails skipped (pass --include-spam-and-trash to include them)\n", summary.Skipped)
		case !opts.IncludeSpam:
			fmt.Fprintf(out, "    %d Spam emails skipped (pass --include-spam to include them)\n", summary.Skipped)
		case !opts.IncludeTrash:
			fmt.Fprintf(out, "    %d Trash emails skipped (pass --include-trash to include them)\n", summary.Skipped)
		}
	}
	fmt.Fprintf(out, "Database written to: %s\n", outputPath)
}
