package loader

import (
	jsonloader "github.com/paramflow/paramflow/pkg/loader/json"
	tomlloader "github.com/paramflow/paramflow/pkg/loader/toml"
	yamlloader "github.com/paramflow/paramflow/pkg/loader/yaml"
)

// Defaults returns a registry with the built-in YAML, JSON and TOML loaders.
func Defaults() *Registry {
	return NewRegistry(
		yamlloader.New(),
		jsonloader.New(),
		tomlloader.New(),
	)
}

// SupportedExtensions returns a list of all extensions the default registry
// supports.
func SupportedExtensions() []string {
	return []string{".yaml", ".yml", ".json", ".toml"}
}
