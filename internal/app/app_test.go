package app

import (
	"testing"

	"learnpath_backend/internal/config"
	"learnpath_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApplyConfigReplacesConfigAndNotifiesCallbacks(t *testing.T) {
	logger.Log = zap.NewNop()

	initial := &config.Config{}
	initial.Server.Port = "8080"
	app := &App{Config: initial}

	var seen []*config.Config
	app.RegisterConfigCallback(func(c *config.Config) { seen = append(seen, c) })
	app.RegisterConfigCallback(func(c *config.Config) { seen = append(seen, c) })

	next := &config.Config{}
	next.Server.Port = "9090"
	app.applyConfig(next)

	assert.Same(t, next, app.Config)
	require.Len(t, seen, 2)
	assert.Same(t, next, seen[0])
	assert.Same(t, next, seen[1])
}

func TestApplyConfigIgnoresUnexpectedPayload(t *testing.T) {
	logger.Log = zap.NewNop()

	initial := &config.Config{}
	app := &App{Config: initial}

	called := false
	app.RegisterConfigCallback(func(*config.Config) { called = true })

	app.applyConfig("not a config")

	assert.Same(t, initial, app.Config)
	assert.False(t, called)
}
