package utils

import (
	"os"
	"testing"
	"time"

	"github.com/cppla/lostfound/config"
)

func TestMain(m *testing.M) {
	config.Set(config.AppConfig{
		Server: config.Server{
			JWTSecret:        "test-secret",
			TokenTTL:         time.Hour,
			RegisterCooldown: time.Minute,
		},
	})
	os.Exit(m.Run())
}
