package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mokbank/mokbank/internal/metrics"
	"github.com/mokbank/mokbank/internal/model"
)

// commit stamps cs and hands it to the store in one call. Nothing is
// considered updated until it returns nil; on failure the caller keeps prior.
func (e *Engine) commit(ctx context.Context, op string, prior model.Account, cs *Changeset) error {
	cs.Account.UpdatedAt = e.now()
	for i := range cs.Transactions {
		if cs.Transactions[i].ID == "" {
			cs.Transactions[i].ID = e.newID()
		}
	}

	if err := e.store.Commit(ctx, *cs); err != nil {
		return e.fail(op, prior, err)
	}
	return nil
}

// reject records a validation failure. The error is returned unchanged.
func (e *Engine) reject(op string, acct model.Account, err error) error {
	metrics.Operations.WithLabelValues(op, metrics.OutcomeRejected).Inc()
	e.log.WithFields(logrus.Fields{"op": op, "user": acct.UserID}).
		WithError(err).Debug("operation rejected")
	return err
}

// fail records a persistence failure and wraps it in model.ErrPersistence.
func (e *Engine) fail(op string, acct model.Account, err error) error {
	metrics.Operations.WithLabelValues(op, metrics.OutcomeFailed).Inc()
	e.log.WithFields(logrus.Fields{"op": op, "user": acct.UserID}).
		WithError(err).Warn("commit failed")
	if errors.Is(err, model.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", model.ErrPersistence, op, err)
}

func (e *Engine) done(ctx context.Context, op string, acct model.Account, summary string) {
	metrics.Operations.WithLabelValues(op, metrics.OutcomeOK).Inc()
	e.log.WithFields(logrus.Fields{"op": op, "user": acct.UserID}).Info(summary)
	if e.afterCommit == nil {
		return
	}
	if err := e.afterCommit(ctx, op, summary); err != nil {
		e.log.WithFields(logrus.Fields{"op": op, "user": acct.UserID}).
			WithError(err).Warn("post-commit hook failed")
	}
}
