// Package config loads toolgate's process configuration from the
// environment.
//
// Every string value is expanded strictly (see secret.ExpandEnvStrict) and
// may be a secret reference, for example:
//
//	TOOLGATE_REGISTRY_API_KEY=secretref:file:registry_api_key
//	REDIS_PASSWORD=secretref:env:VAULT_REDIS_PASSWORD
//
// File references are read relative to TOOLGATE_SECRETS_DIR.
package config
