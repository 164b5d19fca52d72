// package formatter renders canonical playlist documents and migration
// reports to CSV, Markdown, plain text, and styled terminal output
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tuneport/internal/models"
	"tuneport/internal/shared"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// DocumentToCSV converts a document's tracks to CSV with columns: Position,
// Title, Artists, Album, Duration, ISRC
func DocumentToCSV(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artists", "Album", "Duration", "ISRC"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range doc.Tracks {
		record := []string{
			strconv.Itoa(track.Position),
			track.Title,
			strings.Join(track.Artists, "; "),
			track.Album,
			shared.FormatDurationMS(track.DurationMS),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// DocumentToMarkdown converts a document to a Markdown track listing
func DocumentToMarkdown(doc *models.Document) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", doc.Name))
	if doc.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", doc.Description))
	}
	buf.WriteString(fmt.Sprintf("**Source**: %s (%s)\n", doc.SourceService, doc.SourcePlaylistID))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(doc.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for _, track := range doc.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n",
			track.Position, track.PrimaryArtist(), track.Title, albumPart,
			shared.FormatDurationMS(track.DurationMS)))
	}

	return buf.Bytes()
}

// DocumentToText converts a document to a plain text listing
func DocumentToText(doc *models.Document) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", doc.Name))
	if doc.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", doc.Description))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(doc.Tracks)))

	for _, track := range doc.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", track.Position, track.PrimaryArtist(), track.Title))
	}

	return buf.Bytes()
}

// RenderJob renders a job and its report for the terminal.
func RenderJob(job *models.MigrationJob) string {
	var buf strings.Builder

	buf.WriteString(titleStyle.Render(fmt.Sprintf("Migration %s", job.ID)))
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Status:"), statusStyle(job.Status).Render(string(job.Status))))
	buf.WriteString(fmt.Sprintf("%s %s/%s -> %s\n",
		labelStyle.Render("Route:"), job.SourceProvider, job.SourcePlaylistID, job.DestProvider))

	if job.DestPlaylistID != "" {
		buf.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Destination:"), job.DestPlaylistID))
	}
	if job.ErrorMessage != "" {
		buf.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Error:"), failStyle.Render(job.ErrorMessage)))
	}

	if job.Report != nil {
		buf.WriteString(renderReport(job.Report))
	}

	return buf.String()
}

func renderReport(report *models.MatchReport) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("%s %.2f%% direct, %.2f%% fuzzy, %d unresolved\n",
		labelStyle.Render("Matches:"),
		report.MatchedISRCPct, report.MatchedFuzzyPct, len(report.Unresolved)))

	if report.Write != nil {
		buf.WriteString(fmt.Sprintf("%s attempted %d, added %d, failed %d, skipped %d\n",
			labelStyle.Render("Write:"),
			report.Write.Attempted, report.Write.Added, report.Write.Failed, report.Write.Skipped))
		for _, note := range report.Write.Notes {
			buf.WriteString(fmt.Sprintf("  %s\n", warnStyle.Render(note)))
		}
	}

	for _, track := range report.Unresolved {
		buf.WriteString(fmt.Sprintf("  %s %d. %s - %s\n",
			warnStyle.Render("unresolved:"), track.Position,
			strings.Join(track.Artists, ", "), track.Title))
	}

	return buf.String()
}

func statusStyle(status models.JobStatus) lipgloss.Style {
	switch status {
	case models.JobSucceeded:
		return okStyle
	case models.JobFailed:
		return failStyle
	default:
		return warnStyle
	}
}

// ReportToMarkdown converts a job's report to Markdown for filing alongside
// an exported playlist
func ReportToMarkdown(job *models.MigrationJob) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Migration %s\n\n", job.ID))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", job.Status))
	buf.WriteString(fmt.Sprintf("**Source**: %s/%s\n", job.SourceProvider, job.SourcePlaylistID))
	buf.WriteString(fmt.Sprintf("**Destination**: %s/%s\n\n", job.DestProvider, job.DestPlaylistID))

	if job.ErrorMessage != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n\n", job.ErrorMessage))
	}

	report := job.Report
	if report == nil {
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("**Direct matches**: %.2f%%\n", report.MatchedISRCPct))
	buf.WriteString(fmt.Sprintf("**Fuzzy matches**: %.2f%%\n\n", report.MatchedFuzzyPct))

	if len(report.Unresolved) > 0 {
		buf.WriteString("## Unresolved\n\n")
		for _, track := range report.Unresolved {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", track.Position, strings.Join(track.Artists, ", "), track.Title))
		}
	}

	return buf.Bytes()
}

// UnresolvedToCSV converts a report's unresolved tracks to CSV
func UnresolvedToCSV(report *models.MatchReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Title", "Artists", "ISRC"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, track := range report.Unresolved {
		record := []string{
			strconv.Itoa(track.Position),
			track.Title,
			strings.Join(track.Artists, "; "),
			track.ISRC,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocumentCSV exports a document to {base}_tracks.csv, defaulting the
// base name to the source playlist id.
func WriteDocumentCSV(doc *models.Document, basePath string) (string, error) {
	if basePath == "" {
		basePath = doc.SourcePlaylistID
	}

	data, err := DocumentToCSV(doc)
	if err != nil {
		return "", err
	}

	path := basePath + "_tracks.csv"
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}
	return path, nil
}

// WriteReportMarkdown exports a job report to {base}_report.md, defaulting
// the base name to the job id.
func WriteReportMarkdown(job *models.MigrationJob, basePath string) (string, error) {
	if basePath == "" {
		basePath = job.ID
	}

	path := basePath + "_report.md"
	if err := os.WriteFile(path, ReportToMarkdown(job), 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return path, nil
}
