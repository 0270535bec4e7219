// Package config loads, defaults and validates the governance engine's
// configuration.
//
// Configuration is read from YAML on top of Defaults, so keys absent from
// the file keep their default values:
//
//	cfg, err := config.LoadConfig("governance.yaml")
//
// LoadConfigWithEnvOverrides additionally applies environment variables
// named GOVERNANCE_SECTION_FIELD, for example:
//
//   - GOVERNANCE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - GOVERNANCE_RULES_PATH overrides rules.path
//   - GOVERNANCE_SIGNALS_REDIS_URL overrides signals.redis.url
//
// Environment variables always take precedence over the file. Invalid
// override values are ignored.
//
// Validation collects every failed field into a ValidationError.
//
// A process-wide instance is available through Initialize and GetConfig.
package config
