package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays fields whose `env` variable is set. Unset variables leave
// the current value untouched.
func parseEnv(config *Config) error {
	return cleanenv.ReadEnv(config)
}
