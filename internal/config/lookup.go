package config

import "os"

func lookupEnvOrString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}

	return defaultVal
}
