package core

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetAuditLogPath() string
	IsHTTPEnabled() bool
	GetHTTPAddr() string
	IsSidecarEnabled() bool
}
