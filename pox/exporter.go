package pox

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pox-exporter/client"
	"pox-exporter/config"
	"pox-exporter/logger"
	"pox-exporter/models"
	"pox-exporter/repository"
)

// Exporter runs one fetch-compute-render cycle per scrape. It keeps no state
// between scrapes, so it is safe for concurrent use.
type Exporter struct {
	repo      repository.PoxRepositoryInterface
	addresses []string
}

// NewExporter creates an Exporter that checks the addresses configured in cfg
func NewExporter(cfg config.Config, repo repository.PoxRepositoryInterface) *Exporter {
	addrs := make([]string, len(cfg.StackerAddresses))
	copy(addrs, cfg.StackerAddresses)
	return &Exporter{repo: repo, addresses: addrs}
}

// Collect fetches the cycle info and, when the node answered, resolves the
// registration verdict against the next reward phase start.
func (e *Exporter) Collect(ctx context.Context) (models.DerivedMetrics, models.RegistrationVerdict) {
	raw, err := e.repo.FetchCycleInfo(ctx)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		var fetchErr *client.FetchError
		if errors.As(err, &fetchErr) {
			fields = append(fields, zap.Stringer("kind", fetchErr.Kind))
		}
		logger.Logger.Warn("PoX info unavailable", fields...)
		return ComputeCycle(nil), models.NotConfigured
	}

	m := ComputeCycle(raw)
	verdict := ResolveRegistration(ctx, e.addresses, m.NextRewardStartBlock, e.repo)
	return m, verdict
}

// Scrape returns the rendered metrics document.
func (e *Exporter) Scrape(ctx context.Context) string {
	return Render(e.Collect(ctx))
}
