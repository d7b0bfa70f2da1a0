package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository_ListWithFilterReturnsQueryError(t *testing.T) {
	// pgxpool connects lazily, so no server is needed here.
	pool, err := pgxpool.New(context.Background(), "postgres://helpdesk@127.0.0.1:1/helpdesk?connect_timeout=1")
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tickets, err := NewTicketRepository(pool).ListWithFilter(ctx, TicketFilter{Limit: 10})
	require.Error(t, err)
	assert.Nil(t, tickets)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNotFound)
}
