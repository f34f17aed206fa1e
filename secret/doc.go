// Package secret resolves credentials referenced from configuration.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider and Registry)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:file:/run/secrets/registry_api_key
//   - Inline use:  Bearer secretref:env:REGISTRY_TOKEN
//
// The env and file providers are registered in DefaultRegistry.
package secret
