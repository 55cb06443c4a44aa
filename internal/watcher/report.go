package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"meetsum/internal/logger"
	"meetsum/internal/model"
)

// Submitter runs one file through the summarisation pipeline
type Submitter interface {
	Submit(ctx context.Context, data []byte, fileName string) *model.Run
}

// NewReportHandler returns an EventHandler that submits each recording and
// writes a Markdown report next to the processed file in outputDir. With
// withDocx a .docx copy of the report is written as well.
func NewReportHandler(sub Submitter, outputDir string, withDocx bool, log logger.Logger) EventHandler {
	return func(ctx context.Context, filePath string) error {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("read recording: %w", err)
		}

		name := filepath.Base(filePath)
		run := sub.Submit(ctx, data, name)
		ctx = logger.WithRunID(ctx, run.ID)

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		mdPath := filepath.Join(outputDir, base+".md")
		if err := os.WriteFile(mdPath, []byte(RenderReport(run)), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if withDocx {
			if err := writeDocx(run, base, filepath.Join(outputDir, base+".docx")); err != nil {
				log.Warn(ctx, "Failed to write docx for %s: %v", name, err)
			}
		}

		// Move the recording out of the inbox so it won't be re-processed
		if err := os.Rename(filePath, filepath.Join(outputDir, name)); err != nil {
			log.Warn(ctx, "Failed to move %s: %v", filePath, err)
		}

		if run.Failure != nil {
			log.Warn(ctx, "[FAILED] %s -> %s (%s)", name, mdPath, run.Failure.Cause)
			return nil
		}
		log.Info(ctx, "[DONE] %s -> %s", name, mdPath)
		return nil
	}
}

// RenderReport formats a finished run as Markdown
func RenderReport(run *model.Run) string {
	var sb strings.Builder

	title := strings.TrimSuffix(run.FileName, filepath.Ext(run.FileName))
	if title == "" {
		title = run.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n_%s_ · run `%s`\n\n", title, reportTime(run).Format("2006-01-02 15:04"), run.ID)

	if run.Failure != nil {
		fmt.Fprintf(&sb, "## Error\n\n%s (%s)\n\n", run.Failure.Message, run.Failure.Cause)
	}
	for _, w := range run.Warnings {
		fmt.Fprintf(&sb, "> %s\n\n", w.Message)
	}
	if run.Summary != "" {
		fmt.Fprintf(&sb, "## Summary\n\n%s\n\n", strings.TrimSpace(run.Summary))
	}
	if run.Transcript != "" {
		fmt.Fprintf(&sb, "## Transcript\n\n%s\n", strings.TrimSpace(run.Transcript))
	}

	return sb.String()
}

func reportTime(run *model.Run) time.Time {
	if run.FinishedAt.IsZero() {
		return run.StartedAt
	}
	return run.FinishedAt
}
