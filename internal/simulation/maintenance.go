package simulation

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

// interruptedMessage is recorded on simulations whose process went away mid-run.
const interruptedMessage = "interrupted by a server restart"

// Recover marks stored running simulations that have no live run as stopped.
// It is meant to be called once at startup and returns the number of simulations changed.
func (m *Manager) Recover(ctx context.Context) (int, error) {
	sims, err := m.repo.ListSimulations(ctx)
	if err != nil {
		return 0, err
	}

	recovered := 0

	for _, sim := range sims {
		if sim.Status != types.SimulationStatusRunning {
			continue
		}

		if _, live := m.getRun(sim.ID); live {
			continue
		}

		m.closeOrphan(ctx, sim, types.SimulationStatusStopped, interruptedMessage)
		recovered++
	}

	if recovered > 0 {
		m.log.Info("Recovered interrupted simulations", zap.Int("count", recovered))
	}

	return recovered, nil
}

// Cleanup deletes finished simulations that ended longer than the retention ago.
// A zero retention keeps everything.
func (m *Manager) Cleanup(ctx context.Context) (int, error) {
	if m.cfg.Retention <= 0 {
		return 0, nil
	}

	sims, err := m.repo.ListSimulations(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-m.cfg.Retention)
	deleted := 0

	for _, sim := range sims {
		if !sim.Status.IsFinished() {
			continue
		}

		endedAt := sim.UpdatedAt
		if sim.EndedAt != nil {
			endedAt = *sim.EndedAt
		}

		if !endedAt.Before(cutoff) {
			continue
		}

		if err := m.repo.DeleteSimulation(ctx, sim.ID); err != nil && !errors.HasCode(err, errors.ErrCodeSimulationNotFound) {
			return deleted, err
		}

		deleted++
	}

	if deleted > 0 {
		m.log.Info("Removed expired simulations", zap.Int("count", deleted))
	}

	return deleted, nil
}

// StartCleanupJob runs Cleanup on the configured cron schedule until Shutdown.
// An empty schedule or a zero retention disables the job.
func (m *Manager) StartCleanupJob() error {
	if m.cfg.CleanupSchedule == "" || m.cfg.Retention <= 0 {
		return nil
	}

	c := cron.New()

	_, err := c.AddFunc(m.cfg.CleanupSchedule, func() {
		if _, err := m.Cleanup(m.rootCtx); err != nil {
			m.log.Warn("Simulation cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid cleanup schedule %q", m.cfg.CleanupSchedule)
	}

	m.mu.Lock()
	if m.cronJobs != nil {
		m.mu.Unlock()

		return nil
	}
	m.cronJobs = c
	m.mu.Unlock()

	c.Start()

	return nil
}
