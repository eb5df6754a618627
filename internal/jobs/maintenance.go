package jobs

import (
	"context"
	"errors"

	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/models"
	"github.com/vytor/neurobank/internal/worker"
)

// UserLister enumerates the accounts maintenance runs over.
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Maintenance turns per-user upkeep into jobs on a JobQueue.
type Maintenance struct {
	// PruneStats adds the retention cleanup to MaintainAll. Pruning deletes
	// studied counts, which cannot be recomputed, so it is opt-in.
	PruneStats bool

	queue      JobQueue
	users      UserLister
	flashcards worker.ReviewRefresher
	stats      worker.StatsMaintainer
}

// NewMaintenance creates a Maintenance enqueueing onto queue.
func NewMaintenance(queue JobQueue, users UserLister, flashcards worker.ReviewRefresher, stats worker.StatsMaintainer) *Maintenance {
	return &Maintenance{queue: queue, users: users, flashcards: flashcards, stats: stats}
}

func (m *Maintenance) EnqueueRefresh(userID string) error {
	return m.queue.Submit(&worker.RefreshReviewsJob{Flashcards: m.flashcards, UserID: userID})
}

func (m *Maintenance) EnqueueCleanup(userID string) error {
	return m.queue.Submit(&worker.CleanOldStatsJob{Stats: m.stats, UserID: userID})
}

func (m *Maintenance) EnqueueVerify(userID string) error {
	return m.queue.Submit(&worker.VerifyStatsJob{Stats: m.stats, UserID: userID})
}

// forEachUser calls enqueue for every user and returns how many were accepted.
// A full queue stops the pass; the next run picks the rest up.
func (m *Maintenance) forEachUser(ctx context.Context, task string, enqueue ...func(string) error) (int, error) {
	log := logger.FromContext(ctx)

	users, err := m.users.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users for %s: %v", task, err)
		return 0, err
	}

	accepted := 0
	for _, u := range users {
		for _, fn := range enqueue {
			if err := fn(u.ID); err != nil {
				if errors.Is(err, worker.ErrQueueFull) {
					log.Warn("%s stopped early: queue full after %d jobs", task, accepted)
				}
				return accepted, err
			}
			accepted++
		}
	}
	log.Info("%s enqueued %d jobs for %d users", task, accepted, len(users))
	return accepted, nil
}

// RefreshAll enqueues the due-card sweep for every user.
func (m *Maintenance) RefreshAll(ctx context.Context) (int, error) {
	return m.forEachUser(ctx, "review refresh", m.EnqueueRefresh)
}

// MaintainAll enqueues statistics verification for every user, preceded by
// the retention cleanup when PruneStats is set.
func (m *Maintenance) MaintainAll(ctx context.Context) (int, error) {
	if m.PruneStats {
		return m.forEachUser(ctx, "stats maintenance", m.EnqueueCleanup, m.EnqueueVerify)
	}
	return m.forEachUser(ctx, "stats maintenance", m.EnqueueVerify)
}
