package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskheart/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"EMOCTX_RUNTIME_PATH" envDefault:".tuskheart"`

	// Audit trail
	AuditToFile bool `env:"EMOCTX_AUDIT_FILE" envDefault:"true"`
	AuditToLog  bool `env:"EMOCTX_AUDIT_LOG" envDefault:"false"`

	// Serve mode
	HTTP     bool   `env:"EMOCTX_HTTP" envDefault:"true"`
	HTTPAddr string `env:"EMOCTX_HTTP_ADDR" envDefault:"127.0.0.1:9464"`
	Sidecar  bool   `env:"EMOCTX_SIDECAR" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "tuskheart.db")
}

func (c AppConfig) GetAuditLogPath() string {
	return filepath.Join(c.RuntimePath, "audit.jsonl")
}

func (c AppConfig) IsHTTPEnabled() bool {
	return c.HTTP
}

func (c AppConfig) GetHTTPAddr() string {
	return c.HTTPAddr
}

func (c AppConfig) IsSidecarEnabled() bool {
	return c.Sidecar
}
