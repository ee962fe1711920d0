package services

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork is one open database transaction. It is created by
// runInUnitOfWork and must not outlive the callback it is passed to.
type UnitOfWork struct {
	ctx         context.Context
	tx          *gorm.DB
	afterCommit []func(context.Context)
}

// AfterCommit registers fn to run once the transaction has committed.
// Nothing registered runs when the work is rolled back.
func (u *UnitOfWork) AfterCommit(fn func(context.Context)) {
	u.afterCommit = append(u.afterCommit, fn)
}

// runInUnitOfWork executes fn inside a transaction. Any error returned by fn
// (or a panic) rolls everything back and the error is returned as-is.
func runInUnitOfWork(ctx context.Context, db *gorm.DB, fn func(uow *UnitOfWork) error) error {
	uow := &UnitOfWork{ctx: ctx}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		uow.tx = tx
		return fn(uow)
	})
	if err != nil {
		return err
	}
	for _, hook := range uow.afterCommit {
		hook(ctx)
	}
	return nil
}
