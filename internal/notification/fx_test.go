package notification

import (
	"testing"

	"github.com/smallbiznis/telematch/internal/config"
	"github.com/smallbiznis/telematch/internal/notification/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNewPlatformLocal(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := config.Config{}
	cfg.Notification.Platform = config.NotificationPlatformLocal
	cfg.Notification.Permission = "granted"

	p, err := NewPlatform(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &local.Platform{}, p)

	lc.RequireStart()
	lc.RequireStop()
}

func TestNewPlatformUnknown(t *testing.T) {
	cfg := config.Config{}
	cfg.Notification.Platform = "carrier-pigeon"

	_, err := NewPlatform(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	assert.Error(t, err)
}
