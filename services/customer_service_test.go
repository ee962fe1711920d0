package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonspa-backend/models"
)

func TestResolveOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCustomerService(f.db, f.log)

	existing, err := svc.ResolveOrCreate(ctx, f.store.ID, "Someone Else", "+1 555 000 1111", "")
	require.NoError(t, err)
	assert.Equal(t, f.customer.ID, existing.ID)

	created, err := svc.ResolveOrCreate(ctx, f.store.ID, "", "+447700900123", " new@example.com ")
	require.NoError(t, err)
	assert.NotEqual(t, f.customer.ID, created.ID)
	assert.Equal(t, "+447700900123", created.Name)
	assert.Equal(t, "new@example.com", created.Email)

	again, err := svc.ResolveOrCreate(ctx, f.store.ID, "Jo", "+447700900123", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = svc.ResolveOrCreate(ctx, f.store.ID, "Jo", "not-a-phone", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.ResolveOrCreate(ctx, f.store.ID, "Jo", "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.ResolveOrCreate(ctx, 0, "Jo", "+447700900123", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Equal(t, int64(2), f.count(t, &models.Customer{}))
}

func TestTouchLastVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCustomerService(f.db, f.log)
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	customer, err := svc.TouchLastVisit(ctx, f.customer.ID, at)
	require.NoError(t, err)
	require.NotNil(t, customer.LastVisitDate)
	assert.True(t, customer.LastVisitDate.Equal(at))

	_, err = svc.TouchLastVisit(ctx, 404, at)
	assert.ErrorIs(t, err, ErrNotFound)
}
