package importer

import (
	"context"
	"log"
	"sort"

	"github.com/nonsonwune/counselling_db/models"
)

// Resolver rebuilds the round-by-round admission history of one rank. It
// always reads the files again and never consults the record cache.
type Resolver struct {
	Fetcher      Fetcher
	ManifestPath string
	Logger       *log.Logger
}

func NewResolver(f Fetcher, manifestPath string, logger *log.Logger) *Resolver {
	if manifestPath == "" {
		manifestPath = DefaultManifestPath
	}
	return &Resolver{Fetcher: f, ManifestPath: manifestPath, Logger: loggerOrDefault(logger)}
}

// Resolve returns every allotment of rank in the files of (year, category),
// earliest round first. A rank found nowhere yields an empty slice. Files
// that fail to load are skipped; only a manifest failure is returned.
func (r *Resolver) Resolve(ctx context.Context, rank int, year string, category models.SourceCategory) ([]models.HistoryEntry, error) {
	logger := loggerOrDefault(r.Logger)
	name := r.ManifestPath
	if name == "" {
		name = DefaultManifestPath
	}
	manifest, err := ReadManifest(ctx, r.Fetcher, name, logger)
	if err != nil {
		return nil, err
	}

	entries := []models.HistoryEntry{}
	for _, fd := range manifest.Matching(year, category) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := r.Fetcher.Fetch(ctx, fd.Path)
		if err != nil {
			logger.Printf("History: skipping %s: %v", fd.Path, err)
			continue
		}
		rows, err := DecodeFile(data, fd)
		if err != nil {
			logger.Printf("History: skipping %s: %v", fd.Path, err)
			continue
		}
		for _, row := range rows {
			rec, err := ToCandidate(row)
			if err != nil || rec.Rank != rank {
				continue
			}
			entries = append(entries, historyEntry(rec))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PhaseRank < entries[j].PhaseRank
	})
	return entries, nil
}

func historyEntry(rec models.CandidateRecord) models.HistoryEntry {
	return models.HistoryEntry{
		Rank:          rec.Rank,
		Year:          rec.Year,
		Category:      rec.Source,
		Phase:         rec.Phase,
		PhaseRank:     PhaseRank(rec.Phase),
		College:       rec.College,
		Course:        rec.Course,
		AdmissionType: rec.AdmissionType,
		FileName:      rec.FileName,
	}
}
