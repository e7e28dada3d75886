package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New("clover-test")
	assert.NotNil(t, logger)

	// Exercise the sink callback end to end, including field encoding.
	logger.Info("started")
	logger.WithContext(context.Background()).WithFields(map[string]interface{}{
		"run_id": "run-1",
		"count":  3,
	}).Info("replaced connection set")
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.NotNil(t, logger)
	logger.Error("discarded")
}
