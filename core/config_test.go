package core_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")
		conf := core.NewConfig()

		assert.Equal(t, "DEV", conf.Env)
		assert.True(t, conf.Debug)
		assert.False(t, conf.TestMode)
		assert.Equal(t, "AITS", conf.AppName)
		assert.Equal(t, "noreply@localhost", conf.DefaultFromEmail.Address)
		assert.Equal(t, "Asia/Kolkata", conf.Location.String())
		assert.Equal(t, ":8000", conf.Server.Addr)
		assert.Equal(t, 7*24*time.Hour, conf.Server.JWTExpirationDelta)
		assert.Equal(t, core.EngineMongo, conf.Database.Engine)
		assert.Equal(t, "localhost:5432", conf.Database.Address())
		assert.Equal(t, "aits:broadcast", conf.Realtime.Channel)
		assert.Equal(t, 32, conf.Realtime.ClientBuffer)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("ENV", "qa")
		t.Setenv("QA_SERVER_ADDR", ":9999")
		t.Setenv("QA_SERVER_READTIMEOUT", "2s")
		t.Setenv("QA_DATABASE_ENGINE", "MEMORY")
		t.Setenv("QA_REALTIME_REDISURL", "redis://cache:6379/0")
		t.Setenv("QA_TIMEZONE", "UTC")
		conf := core.NewConfig()

		assert.Equal(t, "QA", conf.Env)
		assert.False(t, conf.Debug)
		assert.Equal(t, ":9999", conf.Server.Addr)
		assert.Equal(t, 2*time.Second, conf.Server.ReadTimeout)
		assert.Equal(t, core.EngineMemory, conf.Database.Engine)
		assert.Equal(t, "redis://cache:6379/0", conf.Realtime.RedisURL)
		assert.Equal(t, time.UTC, conf.Location)
	})
}
