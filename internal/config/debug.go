package config

import "os"

func IsDebug() bool {
	return os.Getenv("VAANI_DEBUG") == "1"
}
