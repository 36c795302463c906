package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/ward-api/internal/repository"
	"github.com/meditrack/ward-api/pkg/logger"
	"github.com/meditrack/ward-api/pkg/metrics"
)

type ReconcilerConfig struct {
	Interval time.Duration
	// Repair frees orphaned beds when true; otherwise the pass only
	// reports them.
	Repair bool
}

// Reconciler periodically compares bed occupancy against the patient
// table. A bed marked occupied with no admitted occupant happens when
// a lifecycle operation failed between its two writes, or when an
// occupant was soft-deleted without discharge.
type Reconciler struct {
	beds     repository.BedRepository
	patients repository.PatientRepository
	config   ReconcilerConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewReconciler(
	beds repository.BedRepository,
	patients repository.PatientRepository,
	config ReconcilerConfig,
	l *logger.Logger,
	m *metrics.Metrics,
) *Reconciler {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &Reconciler{
		beds:     beds,
		patients: patients,
		config:   config,
		logger:   l,
		metrics:  m,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.logger.Info("starting occupancy reconciler",
		"interval", r.config.Interval.String(),
		"repair", r.config.Repair)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down occupancy reconciler")
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.metrics.ReconcilerFailures.Inc()
				r.logger.Error(err, "reconciler pass failed")
			}
		}
	}
}

// RunOnce executes a single reconciliation pass.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	orphaned, err := r.beds.ListOrphanedOccupied(ctx)
	if err != nil {
		return fmt.Errorf("failed to list orphaned beds: %w", err)
	}

	for _, bed := range orphaned {
		if !r.config.Repair {
			r.logger.Warn("orphaned occupied bed",
				"bed_id", bed.ID.String(),
				"care_unit_id", bed.CareUnitID.String())
			continue
		}

		if err := r.beds.Release(ctx, bed.ID, uuid.Nil); err != nil {
			r.logger.Error(err, "failed to free orphaned bed", "bed_id", bed.ID.String())
			continue
		}
		r.metrics.OccupancyRepairs.Inc()
		r.logger.Info("freed orphaned bed",
			"bed_id", bed.ID.String(),
			"care_unit_id", bed.CareUnitID.String())
	}

	return r.updateGauges(ctx)
}

func (r *Reconciler) updateGauges(ctx context.Context) error {
	occupied, err := r.beds.CountOccupied(ctx)
	if err != nil {
		return fmt.Errorf("failed to count occupied beds: %w", err)
	}
	r.metrics.OccupiedBeds.Set(float64(occupied))

	admitted, err := r.patients.CountAdmitted(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admitted patients: %w", err)
	}
	r.metrics.ActiveAdmissions.Set(float64(admitted))

	return nil
}
