package services

import (
	"context"
	"fmt"

	"tuneport/internal/models"
)

// DefaultBatchSize bounds chunk submissions when the caller does not override it.
const DefaultBatchSize = 100

// ChunkSubmitter submits one ordered chunk of provider-native track ids to the
// destination playlist. Implementations go through the transport, so a chunk
// error here means the retry budget is already exhausted.
type ChunkSubmitter func(ctx context.Context, ids []string) error

// WriteBatches submits the document's tracks to a destination playlist in
// fixed-size chunks, strictly in order. Tracks lacking a provider-native id
// for the destination are counted as skipped and never submitted. A chunk
// submission error aborts the remaining chunks; the returned report reflects
// what was added before the failure.
func WriteBatches(ctx context.Context, provider string, doc *models.Document, batchSize int, submit ChunkSubmitter) (models.WriteReport, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	report := models.WriteReport{}

	ids := make([]string, 0, len(doc.Tracks))
	for _, track := range doc.Tracks {
		id := track.ProviderID(provider)
		if id == "" {
			report.Skipped++
			continue
		}
		ids = append(ids, id)
	}
	report.Attempted = len(ids)
	if report.Skipped > 0 {
		report.Notes = append(report.Notes,
			fmt.Sprintf("%d tracks had no %s id and were not submitted", report.Skipped, provider))
	}

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		if err := submit(ctx, ids[start:end]); err != nil {
			report.Failed = report.Attempted - report.Added
			report.Notes = append(report.Notes,
				fmt.Sprintf("aborted at chunk %d/%d: %v", start/batchSize+1, (len(ids)+batchSize-1)/batchSize, err))
			return report, err
		}
		report.Added += end - start
	}

	report.Failed = report.Attempted - report.Added
	return report, nil
}
