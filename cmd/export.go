package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"tuneport/internal/formatter"
	"tuneport/internal/match"
	"tuneport/internal/models"
	"tuneport/internal/services"
	"tuneport/internal/shared"
)

// Export reads a playlist from its provider and renders it locally without
// touching any destination.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	provider, err := r.tokenBoundProvider(ctx, cmd.String("from"))
	if err != nil {
		return err
	}

	doc, err := provider.ReadPlaylist(ctx, cmd.String("playlist"), services.ReadOptions{})
	if err != nil {
		return err
	}
	doc = doc.Normalized("")

	switch format := cmd.String("format"); format {
	case "csv":
		path, err := formatter.WriteDocumentCSV(doc, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", path)
		return nil
	case "markdown":
		return r.writePlain("%s", formatter.DocumentToMarkdown(doc))
	case "text":
		return r.writePlain("%s", formatter.DocumentToText(doc))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// Resolve searches a provider's catalog for a single track and prints the
// matcher's verdict.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	if err := r.reloadConfig(cmd.String("config")); err != nil {
		return err
	}

	name := cmd.String("provider")
	provider, err := r.tokenBoundProvider(ctx, name)
	if err != nil {
		return err
	}

	searcher, ok := provider.(services.CatalogSearcher)
	if !ok {
		return fmt.Errorf("%w: %s does not support catalog search", shared.ErrInvalidArgument, name)
	}

	title := cmd.String("title")
	artist := cmd.String("artist")

	candidates, err := searcher.SearchCatalog(ctx, title, artist)
	if err != nil {
		return err
	}

	m := r.config.Matcher
	result := match.Resolve(match.Input{
		Track: models.Track{
			Title:      title,
			Artists:    []string{artist},
			DurationMS: int(cmd.Int("duration-ms")),
			ISRC:       cmd.String("isrc"),
		},
		Catalog: candidates,
		Thresholds: match.Thresholds{
			DurationToleranceMS:    m.DurationToleranceMS,
			FuzzyDurationPenaltyMS: m.FuzzyDurationPenaltyMS,
			FuzzyMin:               m.FuzzyMin,
			TitleWeight:            m.TitleWeight,
			ArtistWeight:           m.ArtistWeight,
			DurationWeight:         m.DurationWeight,
		},
	})

	if result == nil {
		return r.writePlain("no confident match among %d candidates\n", len(candidates))
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.printResolution(result)
}

func (r *Runner) printResolution(result *models.MatchResult) error {
	if err := r.writePlain("matched %s via %s (confidence %.3f)\n", result.ID, result.Rule, result.Confidence); err != nil {
		return err
	}
	for _, scored := range result.Candidates {
		if err := r.writePlain("  %-24s %s - %s  %.3f\n",
			scored.Candidate.ID, scored.Candidate.PrimaryArtist, scored.Candidate.Title, scored.Confidence); err != nil {
			return err
		}
	}
	return nil
}

// tokenBoundProvider resolves credentials from config and builds the
// adapter.
func (r *Runner) tokenBoundProvider(ctx context.Context, name string) (services.Provider, error) {
	token, err := services.NewConfigAuth(r.config).ProviderAuth(ctx, name)
	if err != nil {
		return nil, err
	}
	return r.factory().Provider(name, token)
}
