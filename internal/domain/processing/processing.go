package processing

import (
	"math"
	"time"
)

// Stage names a step of the wider corpus pipeline. This module only drives
// StageIngestion.
type Stage string

const (
	StageInitialization    Stage = "initialization"
	StageIngestion         Stage = "ingestion"
	StagePreprocessing     Stage = "preprocessing"
	StagePCAPProcessing    Stage = "pcap_processing"
	StageHMSTSProcessing   Stage = "hmsts_processing"
	StageCrossLinking      Stage = "cross_linking"
	StageValidation        Stage = "validation"
	StageGraphConstruction Stage = "graph_construction"
	StageExport            Stage = "export"
	StageComplete          Stage = "complete"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// BatchProgress tracks one unit of work (for the loaders, one source file).
type BatchProgress struct {
	BatchID string
	Stage   Stage
	Status  Status

	TotalItems     int
	ProcessedItems int
	FailedItems    int
	SkippedItems   int

	StartedAt        time.Time
	ActualCompletion *time.Time

	Errors    []string
	LastError string
}

func NewBatchProgress(batchID string, stage Stage, total int) *BatchProgress {
	return &BatchProgress{
		BatchID:    batchID,
		Stage:      stage,
		Status:     StatusInProgress,
		TotalItems: total,
		StartedAt:  time.Now().UTC(),
	}
}

// Record counts one processed item. failed and skipped are mutually exclusive.
func (p *BatchProgress) Record(failed, skipped bool) {
	p.ProcessedItems++
	switch {
	case failed:
		p.FailedItems++
	case skipped:
		p.SkippedItems++
	}
}

func (p *BatchProgress) Fail(msg string) {
	p.Errors = append(p.Errors, msg)
	p.LastError = msg
}

// Finish closes the batch as completed, or failed when any error was recorded.
func (p *BatchProgress) Finish() {
	now := time.Now().UTC()
	p.ActualCompletion = &now
	if len(p.Errors) > 0 {
		p.Status = StatusFailed
		return
	}
	p.Status = StatusCompleted
}

// ProgressPercentage is processed/total as a percentage, two decimals.
func (p *BatchProgress) ProgressPercentage() float64 {
	if p.TotalItems == 0 {
		return 0
	}
	return round2(float64(p.ProcessedItems) / float64(p.TotalItems) * 100)
}

// SuccessRate is the share of processed items that did not fail, two decimals.
func (p *BatchProgress) SuccessRate() float64 {
	if p.ProcessedItems == 0 {
		return 0
	}
	return round2(float64(p.ProcessedItems-p.FailedItems) / float64(p.ProcessedItems) * 100)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
