package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Maheshlee007/tkd-drawsheet/models"
	"github.com/Maheshlee007/tkd-drawsheet/repositories"
	"github.com/Maheshlee007/tkd-drawsheet/storage"
	"golang.org/x/sync/errgroup"
)

// ExportLinks holds the public URLs of an uploaded drawsheet export.
type ExportLinks struct {
	BracketURL string `json:"bracket_url"`
	ResultsURL string `json:"results_url"`
	ExportedAt string `json:"exported_at"`
}

type ExportService interface {
	ExportTournament(ctx context.Context, tournamentID int) (*models.Export, error)
	UploadExport(ctx context.Context, tournamentID int) (*ExportLinks, error)
}

type exportService struct {
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewExportService(
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ExportService {
	return &exportService{
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

// ExportTournament assembles the full drawsheet export for download.
func (s *exportService) ExportTournament(ctx context.Context, tournamentID int) (*models.Export, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return &models.Export{
		Tournament: *tournament,
		Bracket:    tournament.Bracket,
		Results:    tournament.Results,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// UploadExport writes the bracket and the results as two JSON objects to the
// configured object storage and returns their public URLs. The two uploads
// run concurrently.
func (s *exportService) UploadExport(ctx context.Context, tournamentID int) (*ExportLinks, error) {
	export, err := s.ExportTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	bracketJSON, err := json.Marshal(export.Bracket)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bracket: %w", err)
	}
	resultsJSON, err := json.Marshal(export.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	stamp := export.ExportedAt.Format("20060102T150405Z")
	bracketKey := fmt.Sprintf("exports/tournament-%d/%s/bracket.json", tournamentID, stamp)
	resultsKey := fmt.Sprintf("exports/tournament-%d/%s/results.json", tournamentID, stamp)

	var bracketResult, resultsResult *storage.UploadResult

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := s.uploader.Upload(gCtx, bracketKey, "application/json", bytes.NewReader(bracketJSON))
		if err != nil {
			return fmt.Errorf("failed to upload bracket export: %w", err)
		}
		bracketResult = res
		return nil
	})
	g.Go(func() error {
		res, err := s.uploader.Upload(gCtx, resultsKey, "application/json", bytes.NewReader(resultsJSON))
		if err != nil {
			return fmt.Errorf("failed to upload results export: %w", err)
		}
		resultsResult = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("tournament export uploaded",
		slog.Int("tournament_id", tournamentID),
		slog.String("bracket_key", bracketResult.Key),
		slog.String("results_key", resultsResult.Key))

	return &ExportLinks{
		BracketURL: s.uploader.GetPublicURL(bracketResult.Key),
		ResultsURL: s.uploader.GetPublicURL(resultsResult.Key),
		ExportedAt: stamp,
	}, nil
}
