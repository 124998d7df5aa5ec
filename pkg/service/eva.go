// Package service holds the dashboard state: the current dataset, the figures
// built from it and the record queries backed by the store.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scarnyc/spacewalks/pkg/config"
	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/figure"
	"github.com/scarnyc/spacewalks/pkg/metrics"
	"github.com/scarnyc/spacewalks/pkg/store"
	"github.com/scarnyc/spacewalks/pkg/utils"
)

const defaultMaxResults = 100

type Loader interface {
	Load(ctx context.Context) (*dataset.Table, error)
}

// loadedState is swapped in whole by a successful reload.
type loadedState struct {
	table   *dataset.Table
	figures map[string]*figure.Figure
}

type EVAService struct {
	config  *config.Config
	loader  Loader
	store   store.EVAStore
	metrics *metrics.Metrics

	// reloads are serialized; readers only take mu.
	reloadMu sync.Mutex
	mu       sync.RWMutex
	state    *loadedState
}

func NewEVAService(cfg *config.Config, loader Loader, evaStore store.EVAStore, m *metrics.Metrics) *EVAService {
	return &EVAService{
		config:  cfg,
		loader:  loader,
		store:   evaStore,
		metrics: m,
	}
}

func (s *EVAService) buildFigures(table *dataset.Table) map[string]*figure.Figure {
	figures := make(map[string]*figure.Figure)

	for _, name := range figure.VariantNames() {
		variant, _ := figure.LookupVariant(name)
		figures[name] = figure.Build(table, figure.Options{
			Variant: variant,
			Colors:  s.config.Dashboard.Colors,
		})
	}

	return figures
}

func countryCounts(table *dataset.Table) map[string]int {
	counts := make(map[string]int)
	for _, r := range table.Records {
		counts[r.Country]++
	}

	return counts
}

// Reload fetches the dataset, stores it and swaps it in. On failure the
// previous dataset stays in service.
func (s *EVAService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()

	table, err := s.loader.Load(ctx)
	if err != nil {
		s.metrics.ObserveLoad(metrics.OutcomeFailure, time.Since(start))

		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if table.Len() == 0 {
		s.metrics.ObserveLoad(metrics.OutcomeFailure, time.Since(start))

		return fmt.Errorf("dataset from %s has no rows", table.Source)
	}

	if err := s.store.ReplaceEVAs(ctx, table.Records); err != nil {
		s.metrics.ObserveLoad(metrics.OutcomeFailure, time.Since(start))

		return fmt.Errorf("failed to store dataset: %w", err)
	}

	next := &loadedState{table: table, figures: s.buildFigures(table)}

	mismatches := figure.CheckAnnotations(table)
	for _, mismatch := range mismatches {
		logrus.Warn(mismatch)
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	outcome := metrics.OutcomeSuccess
	if table.FromSnapshot {
		outcome = metrics.OutcomeFallback
	}

	s.metrics.ObserveLoad(outcome, time.Since(start))
	s.metrics.SetRows(countryCounts(table))
	s.metrics.SetAnnotationMismatches(len(mismatches))
	s.metrics.SetSkippedRows(len(table.Skipped))

	logrus.WithFields(logrus.Fields{
		"source":    table.Source,
		"rows":      table.Len(),
		"skipped":   len(table.Skipped),
		"countries": table.Countries(),
		"elapsed":   time.Since(start).Round(time.Millisecond).String(),
	}).Info("Loaded dataset")

	return nil
}

func (s *EVAService) ready() (*loadedState, *contract.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, contract.NewError(
			contract.ErrorCodeServiceUnderMaintenance,
			"the dataset has not been loaded yet",
		)
	}

	return s.state, nil
}

func (s *EVAService) Ready() bool {
	_, err := s.ready()

	return err == nil
}

func (s *EVAService) Table() (*dataset.Table, *contract.Error) {
	current, err := s.ready()
	if err != nil {
		return nil, err
	}

	return current.table, nil
}

// Figure returns the figure of the named variant; an empty name selects the
// configured default.
func (s *EVAService) Figure(variant string) (*figure.Figure, figure.Variant, *contract.Error) {
	name := utils.FirstNonEmpty(variant, s.config.Dashboard.Variant)

	v, ok := figure.LookupVariant(name)
	if !ok {
		return nil, figure.Variant{}, contract.NewError(
			contract.ErrorCodeInvalidParameterValue,
			fmt.Sprintf("unknown variant %q. Allowed values are %v", name, figure.VariantNames()),
		)
	}

	current, err := s.ready()
	if err != nil {
		return nil, v, err
	}

	return current.figures[name], v, nil
}

func (s *EVAService) SearchEVAs(
	ctx context.Context, input *contract.SearchEVAs,
) (*contract.SearchEVAsResponse, *contract.Error) {
	if _, err := s.ready(); err != nil {
		return nil, err
	}

	maxResults := defaultMaxResults
	if input.MaxResults != nil {
		maxResults = int(*input.MaxResults)
	}

	page, err := s.store.SearchEVAs(ctx, input.Filter, input.OrderBy, maxResults, input.PageToken)
	if err != nil {
		return nil, err
	}

	return &contract.SearchEVAsResponse{
		EVAs:          page.Items,
		NextPageToken: page.NextPageToken,
	}, nil
}

func (s *EVAService) GetEVA(ctx context.Context, input *contract.GetEVA) (*contract.GetEVAResponse, *contract.Error) {
	if _, err := s.ready(); err != nil {
		return nil, err
	}

	eva, err := s.store.GetEVA(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &contract.GetEVAResponse{EVA: eva}, nil
}

func (s *EVAService) Summary(ctx context.Context) (*contract.Summary, *contract.Error) {
	current, err := s.ready()
	if err != nil {
		return nil, err
	}

	summary, err := s.store.Summary(ctx)
	if err != nil {
		return nil, err
	}

	summary.Source = current.table.Source
	if !current.table.FetchedAt.IsZero() {
		summary.FetchedAt = current.table.FetchedAt.UTC().Format(time.RFC3339)
	}

	return summary, nil
}
