package services

import (
	"context"
	"fmt"
	"time"

	"weather-stats/internal/dataset"
	"weather-stats/internal/source"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

// DatasetService loads weather files into datasets
type DatasetService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDatasetService creates a new dataset service. metricsCollector may be nil.
func NewDatasetService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DatasetService {
	return &DatasetService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadFile opens a weather file and loads every valid record from it.
func (s *DatasetService) LoadFile(ctx context.Context, path string) (*dataset.Dataset, error) {
	startTime := time.Now()

	s.logger.Info(ctx, "[LOAD_START] Loading weather file", logging.Fields{
		"file_path": path,
		"stage":     "INITIALIZATION",
	})

	file, err := source.Open(path)
	if err != nil {
		s.logger.Error(ctx, "[LOAD_FILE_ERROR] Cannot open weather file", logging.Fields{
			"file_path": path,
			"stage":     "FILE_DISCOVERY",
		}, err)
		return nil, err
	}

	return s.Load(ctx, file, path, startTime)
}

// Load builds a dataset from any line source. name identifies src in logs.
func (s *DatasetService) Load(ctx context.Context, src source.LineSource, name string, startTime time.Time) (*dataset.Dataset, error) {
	opts := []dataset.Option{dataset.WithLogger(s.logger)}
	if s.metrics != nil {
		opts = append(opts, dataset.WithMetrics(s.metrics))
	}

	ds, err := dataset.Load(ctx, src, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}

	duration := time.Since(startTime)
	fields := logging.Fields{
		"file_path":        name,
		"records":          ds.Size(),
		"skipped":          ds.Skipped(),
		"duration_seconds": duration.Seconds(),
		"stage":            "COMPLETE",
	}
	for reason, n := range ds.SkippedBy() {
		if n > 0 {
			fields["skipped_"+reason.String()] = n
		}
	}
	s.logger.Info(ctx, "[LOAD_COMPLETE] Weather file loaded", fields)

	return ds, nil
}
