package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/codevector/internal/config"
)

func TestDataDirForPrefersEmbeddedLitePath(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.Platform = "embedded-lite"
	cfg.Vector.Embedded.Path = "/var/lib/codevector/codevector.db"
	cfg.Log.File = "/var/log/codevector/app.log"

	assert.Equal(t, "/var/lib/codevector", dataDirFor(cfg))
}

func TestDataDirForFallsBackToLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.Platform = "native-vector-db"
	cfg.Log.File = "/var/log/codevector/app.log"

	assert.Equal(t, "/var/log/codevector", dataDirFor(cfg))
}

func TestDataDirForFallsBackToDefaultLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Vector.Platform = "native-vector-db"
	cfg.Log.File = ""

	assert.NotEmpty(t, dataDirFor(cfg))
}
