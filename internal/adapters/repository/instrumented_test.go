package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/retailops/loadboard/internal/infrastructure/logger"
	"github.com/retailops/loadboard/internal/ports"
)

func TestInstrument(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	registry := prometheus.NewRegistry()
	metrics := NewStoreMetrics(registry)

	coll := Instrument("tasks", NewMemoryStore().Collection("tasks"), metrics, logger.FromZap(zap.New(core)))
	ctx := context.Background()

	id, err := coll.Insert(ctx, json.RawMessage(`{"retailer":"Acme"}`))
	require.NoError(t, err)

	_, err = coll.Find(ctx)
	require.NoError(t, err)

	_, err = coll.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)

	_, err = coll.Insert(ctx, json.RawMessage(`broken`))
	assert.Error(t, err)

	ok, err := coll.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("every outcome gets a series", func(t *testing.T) {
		// insert ok, insert error, find ok, get ok, delete ok
		assert.Equal(t, 5, testutil.CollectAndCount(metrics.duration, "task_store_operation_duration_seconds"))

		families, err := registry.Gather()
		require.NoError(t, err)
		require.Len(t, families, 1)
		assert.Equal(t, "task_store_operation_duration_seconds", families[0].GetName())
	})

	t.Run("not found is not an error", func(t *testing.T) {
		failed := logs.FilterMessage("Store operation failed").All()
		require.Len(t, failed, 1)
		assert.Equal(t, "insert", failed[0].ContextMap()["operation"])
	})

	t.Run("nil metrics and logger are allowed", func(t *testing.T) {
		bare := Instrument("tasks", NewMemoryStore().Collection("tasks"), nil, nil)
		_, err := bare.Find(ctx)
		assert.NoError(t, err)
	})
}
