package cli

import _ "embed"

// defaultExecConfigurationDocument holds the built-in values for every configuration key the exec command reads.
//
//go:embed default_config.yaml
var defaultExecConfigurationDocument string

// EmbeddedDefaultConfiguration returns a fresh copy of the built-in configuration document and its viper type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return []byte(defaultExecConfigurationDocument), configurationTypeConstant
}
