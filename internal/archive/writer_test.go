package archive

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roadsense/telemetry/internal/model"
)

func TestTransform(t *testing.T) {
	observed := time.Date(2026, 8, 1, 14, 3, 22, 0, time.UTC)
	rec := model.LiveRecord{
		VehicleID:      "VER-1",
		LapNumber:      12,
		LapTimeSeconds: 92.341,
		Speed:          305.2,
		Position:       1,
		GapToLeader:    1.8,
		ObservedAt:     observed,
	}

	row := transform(rec)

	if row.ID == uuid.Nil {
		t.Error("ID should be generated")
	}
	if row.VehicleID != "VER-1" {
		t.Errorf("VehicleID = %q, want VER-1", row.VehicleID)
	}
	if row.LapTimeSeconds != 92.341 {
		t.Errorf("LapTimeSeconds = %v, want 92.341", row.LapTimeSeconds)
	}
	if !row.ObservedAt.Equal(observed) {
		t.Errorf("ObservedAt = %v, want %v", row.ObservedAt, observed)
	}
	if row.ArchivedAt.IsZero() {
		t.Error("ArchivedAt should be set")
	}
}

func TestTransform_UniqueIDs(t *testing.T) {
	rec := model.LiveRecord{VehicleID: "VER-1"}

	a := transform(rec)
	b := transform(rec)
	if a.ID == b.ID {
		t.Error("each row should get a fresh ID")
	}
}

func TestWriter_EnqueueDropsWhenFull(t *testing.T) {
	w := NewWriter(WriterConfig{
		BatchSize:     10,
		FlushInterval: time.Hour,
		BufferSize:    2,
	}, nil, nil)

	// Not started, so nothing drains the channel
	w.Enqueue(model.LiveRecord{VehicleID: "A"})
	w.Enqueue(model.LiveRecord{VehicleID: "B"})
	w.Enqueue(model.LiveRecord{VehicleID: "C"})

	if got := w.Stats().RowsDropped; got != 1 {
		t.Errorf("RowsDropped = %d, want 1", got)
	}
}

func TestWriter_StartStop(t *testing.T) {
	w := NewWriter(WriterConfig{
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
		BufferSize:    100,
	}, nil, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	w.Enqueue(model.LiveRecord{VehicleID: "VER-1"})
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestWriter_StopDrainsQueuedRecords(t *testing.T) {
	w := NewWriter(WriterConfig{
		BatchSize:     10,
		FlushInterval: time.Hour,
		BufferSize:    10,
	}, nil, nil)

	// Queued but never consumed: the writer was not started
	w.Enqueue(model.LiveRecord{VehicleID: "VER-1"})
	w.Enqueue(model.LiveRecord{VehicleID: "HAM-44"})
	w.Enqueue(model.LiveRecord{VehicleID: "LEC-16"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if got := len(w.input); got != 0 {
		t.Errorf("%d records left queued after Stop, want 0", got)
	}
	w.mu.Lock()
	batched := len(w.batch)
	w.mu.Unlock()
	if batched != 0 {
		t.Errorf("%d rows left batched after Stop, want 0", batched)
	}
}

func TestNewWriter_DefaultsApplied(t *testing.T) {
	w := NewWriter(WriterConfig{}, nil, nil)

	def := DefaultWriterConfig()
	if w.cfg.BatchSize != def.BatchSize {
		t.Errorf("BatchSize = %d, want %d", w.cfg.BatchSize, def.BatchSize)
	}
	if w.cfg.FlushInterval != def.FlushInterval {
		t.Errorf("FlushInterval = %v, want %v", w.cfg.FlushInterval, def.FlushInterval)
	}
	if cap(w.input) != def.BufferSize {
		t.Errorf("cap(input) = %d, want %d", cap(w.input), def.BufferSize)
	}
}
