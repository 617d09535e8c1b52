package core

import (
	"github.com/fedragon/go-mediasort/internal/fs"
	"github.com/fedragon/go-mediasort/internal/models"

	"go.uber.org/zap"
)

// dedup handles a file whose destination name is taken: identical content
// sends it to the skipped area, anything else to the quarantine area. The
// file already at target is left alone.
func (s *DeviceSorter) dedup(m models.Media, target string) (models.Outcome, error) {
	outcome := models.Outcome{Action: models.Untouched, Source: m.Path}

	stop := s.Metrics.Record("hash")
	same, err := fs.SameContent(s.HashFunc, m.Path, target)
	_ = stop()
	if err != nil {
		return outcome, err
	}

	if !same {
		dest, err := s.divert(m.Path, s.QuarantineDir)
		if err != nil {
			return outcome, err
		}

		outcome.Action = models.Disambiguated
		outcome.Target = dest
		outcome.Reason = "destination exists with different content"
		s.Logger.Warn("Additional check required: destination exists and differs from source",
			zap.String("source", m.Path),
			zap.String("existing", target),
			zap.String("dest", dest),
			zap.Bool("dry_run", s.DryRun),
		)
		return outcome, nil
	}

	dest, err := s.divert(m.Path, s.SkippedDir)
	if err != nil {
		return outcome, err
	}

	outcome.Action = models.Skipped
	outcome.Target = dest
	outcome.Reason = "destination exists with identical content"
	s.Logger.Info("Moved to skipped: destination exists and equals source",
		zap.String("source", m.Path),
		zap.String("existing", target),
		zap.String("dest", dest),
		zap.Bool("dry_run", s.DryRun),
	)
	return outcome, nil
}
