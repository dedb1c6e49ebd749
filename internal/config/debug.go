package config

import "os"

func IsDebug() bool {
	return os.Getenv("EMOCTX_DEBUG") == "1"
}
