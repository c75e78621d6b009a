package repository

import (
	"context"
	"errors"
	"fmt"

	"lutfarm/database"
	"lutfarm/events"
	"lutfarm/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                  *database.DB
	tx                  pgx.Tx
	ctx                 context.Context
	transactionalBus    *events.TransactionalBus
	runRepo             service.RunRepository
	rankedSolutionRepo  service.RankedSolutionRepository
	publishedWeightRepo service.PublishedWeightRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.runRepo = newRunRepositoryWithTx(tx)
	u.rankedSolutionRepo = newRankedSolutionRepositoryWithTx(tx)
	u.publishedWeightRepo = newPublishedWeightRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		return u.transactionalBus.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and drops pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}
	return nil
}

// RunRepository returns the run repository for this unit of work
func (u *unitOfWork) RunRepository() service.RunRepository {
	if u.runRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.runRepo
}

// RankedSolutionRepository returns the ranked solution repository for this unit of work
func (u *unitOfWork) RankedSolutionRepository() service.RankedSolutionRepository {
	if u.rankedSolutionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rankedSolutionRepo
}

// PublishedWeightRepository returns the published weight repository for this unit of work
func (u *unitOfWork) PublishedWeightRepository() service.PublishedWeightRepository {
	if u.publishedWeightRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.publishedWeightRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
