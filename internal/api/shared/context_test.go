package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/domain"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	traceID := GetTraceID(traced)
	assert.Len(t, traceID, TraceIDLength*2)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "parent context is unchanged")
	assert.NotEqual(t, traceID, GetTraceID(SetTraceID(ctx)))
}

func TestGetTraceIDIgnoresForeignValues(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestActorFromContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	_, ok = ActorFromContext(WithActor(context.Background(), domain.Actor{Role: domain.RoleAdmin}))
	assert.False(t, ok, "actor without a user ID")

	want := domain.Actor{UserID: uuid.New(), Role: domain.RoleModerator}
	got, ok := ActorFromContext(WithActor(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}
