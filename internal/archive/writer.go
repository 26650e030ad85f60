package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadsense/telemetry/internal/model"
)

const insertTelemetrySQL = `
INSERT INTO telemetry_records (
	id, vehicle_id, lap_number, lap_time_seconds, speed,
	position, gap_to_leader, observed_at, archived_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// WriterConfig holds batch writer configuration.
type WriterConfig struct {
	// BatchSize is the number of rows per insert batch.
	BatchSize int

	// FlushInterval is how often a partial batch is flushed.
	FlushInterval time.Duration

	// BufferSize is the capacity of the inbound record channel.
	BufferSize int
}

// DefaultWriterConfig returns a WriterConfig with sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     500,
		FlushInterval: 1 * time.Second,
		BufferSize:    5000,
	}
}

// WriterStats holds cumulative writer counters.
type WriterStats struct {
	RowsWritten int64
	RowsDropped int64
	Flushes     int64
	FlushErrors int64
}

// telemetryRow is the database representation of a live record.
type telemetryRow struct {
	ID             uuid.UUID
	VehicleID      string
	LapNumber      int
	LapTimeSeconds float64
	Speed          float64
	Position       int
	GapToLeader    float64
	ObservedAt     time.Time
	ArchivedAt     time.Time
}

// Writer batches live telemetry records and inserts them into PostgreSQL.
type Writer struct {
	cfg    WriterConfig
	db     *pgxpool.Pool
	logger *slog.Logger

	input chan model.LiveRecord

	mu    sync.Mutex
	batch []telemetryRow

	rowsWritten atomic.Int64
	rowsDropped atomic.Int64
	flushes     atomic.Int64
	flushErrors atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWriter creates a batch writer backed by the given pool.
func NewWriter(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultWriterConfig().FlushInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultWriterConfig().BufferSize
	}

	return &Writer{
		cfg:    cfg,
		db:     db,
		logger: logger.With("component", "archive_writer"),
		input:  make(chan model.LiveRecord, cfg.BufferSize),
		batch:  make([]telemetryRow, 0, cfg.BatchSize),
	}
}

// Start launches the consume and flush loops.
func (w *Writer) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(2)
	go w.consumeLoop(runCtx)
	go w.flushLoop(runCtx)

	w.logger.Info("archive writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the loops and flushes any remaining rows.
func (w *Writer) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("archive writer stop: %w", ctx.Err())
	}

	// The loops are stopped; whatever is still queued gets one last batch.
drain:
	for {
		select {
		case rec := <-w.input:
			w.append(rec)
		default:
			break drain
		}
	}

	w.flush(ctx)
	w.logger.Info("archive writer stopped", "rows_written", w.rowsWritten.Load())
	return nil
}

// Enqueue hands a record to the writer without blocking. Full buffers drop
// the record; the stream path never waits on the database.
func (w *Writer) Enqueue(rec model.LiveRecord) {
	select {
	case w.input <- rec:
	default:
		w.rowsDropped.Add(1)
		w.logger.Warn("archive buffer full, dropping record", "vehicle_id", rec.VehicleID)
	}
}

// Stats returns cumulative writer counters.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		RowsWritten: w.rowsWritten.Load(),
		RowsDropped: w.rowsDropped.Load(),
		Flushes:     w.flushes.Load(),
		FlushErrors: w.flushErrors.Load(),
	}
}

func (w *Writer) consumeLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-w.input:
			w.append(rec)
		}
	}
}

func (w *Writer) flushLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Writer) append(rec model.LiveRecord) {
	row := transform(rec)

	w.mu.Lock()
	w.batch = append(w.batch, row)
	full := len(w.batch) >= w.cfg.BatchSize
	w.mu.Unlock()

	if full {
		w.flush(context.Background())
	}
}

func (w *Writer) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.batch) == 0 {
		w.mu.Unlock()
		return
	}
	rows := w.batch
	w.batch = make([]telemetryRow, 0, w.cfg.BatchSize)
	w.mu.Unlock()

	if w.db == nil {
		return
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertTelemetrySQL,
			r.ID, r.VehicleID, r.LapNumber, r.LapTimeSeconds, r.Speed,
			r.Position, r.GapToLeader, r.ObservedAt, r.ArchivedAt,
		)
	}

	results := w.db.SendBatch(ctx, batch)
	var failed int
	for range rows {
		if _, err := results.Exec(); err != nil {
			failed++
		}
	}
	if err := results.Close(); err != nil {
		w.flushErrors.Add(1)
		w.logger.Error("batch flush failed", "error", err, "rows", len(rows))
		return
	}

	w.flushes.Add(1)
	w.rowsWritten.Add(int64(len(rows) - failed))
	if failed > 0 {
		w.flushErrors.Add(1)
		w.logger.Warn("batch flush partial failure", "failed", failed, "rows", len(rows))
	} else {
		w.logger.Debug("batch flushed", "rows", len(rows))
	}
}

// transform converts a live record into its database row.
func transform(rec model.LiveRecord) telemetryRow {
	return telemetryRow{
		ID:             uuid.New(),
		VehicleID:      rec.VehicleID,
		LapNumber:      rec.LapNumber,
		LapTimeSeconds: rec.LapTimeSeconds,
		Speed:          rec.Speed,
		Position:       rec.Position,
		GapToLeader:    rec.GapToLeader,
		ObservedAt:     rec.ObservedAt,
		ArchivedAt:     time.Now().UTC(),
	}
}
