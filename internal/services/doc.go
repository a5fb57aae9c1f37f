// Package services implements the layer between HTTP handlers and the
// dataprocessing pipeline.
//
// DatasetService owns the immutable registration dataset. It loads the
// workbook once at start-up, serves the snapshot to concurrent readers
// without locking and swaps in a complete new snapshot on reload. A failed
// reload keeps the previous snapshot.
//
// HealthService reports liveness, readiness (a snapshot is being served)
// and version information.
//
// Services receive their *slog.Logger and metrics by injection:
//
//	svc := services.NewDatasetService(opts, dataprocessing.NewDeriver(nil), metrics, logger)
//	if _, err := svc.Load(ctx); err != nil {
//	    return err
//	}
package services
