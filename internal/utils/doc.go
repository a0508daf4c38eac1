// Package utils hosts the configuration loader and logger factory shared by the CLI.
package utils
