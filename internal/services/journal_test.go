package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalService(t *testing.T) {
	f := newFixture(t)
	svc := NewJournalService(f.store.Journal())
	ctx := context.Background()

	text := "Went for a long run and felt lighter"
	date := time.Date(2024, 1, 5, 22, 30, 0, 0, time.UTC)

	_, err := svc.Create(ctx, f.user.ID, JournalRequest{Date: &date})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, f.user.ID, JournalRequest{Description: &text})
	assert.ErrorIs(t, err, ErrValidation)

	entry, err := svc.Create(ctx, f.user.ID, JournalRequest{Description: &text, Date: &date})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), entry.Date)

	edited := "Went for a long run"
	updated, err := svc.Update(ctx, f.user.ID, entry.ID, JournalRequest{Description: &edited})
	require.NoError(t, err)
	assert.Equal(t, edited, updated.Description)
	assert.Equal(t, entry.Date, updated.Date)

	entries, err := svc.List(ctx, f.user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = svc.Update(ctx, uuid.New(), entry.ID, JournalRequest{Description: &edited})
	assert.ErrorIs(t, err, ErrJournalNotFound)

	require.NoError(t, svc.Delete(ctx, f.user.ID, entry.ID))
	assert.ErrorIs(t, svc.Delete(ctx, f.user.ID, entry.ID), ErrJournalNotFound)
}
