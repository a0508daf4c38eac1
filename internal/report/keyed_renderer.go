package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/temirov/gitexec/internal/execshell"
)

// KeyEncoding selects the structured encoding of a KeyedRenderer.
type KeyEncoding int

// Supported key encodings.
const (
	KeyEncodingJSON KeyEncoding = iota
	KeyEncodingYAML
)

const (
	jsonIndentConstant             = "  "
	yamlIndentConstant             = 2
	encodeReportErrorTemplate      = "unable to encode report: %w"
	unsupportedKeyEncodingTemplate = "unsupported key encoding %d"
)

// KeyedRenderer maps repository paths to their captured output. Logging a path twice overwrites the earlier entry.
type KeyedRenderer struct {
	entries  map[string]string
	encoding KeyEncoding
}

// NewKeyedRenderer constructs an empty KeyedRenderer.
func NewKeyedRenderer(encoding KeyEncoding) *KeyedRenderer {
	return &KeyedRenderer{entries: map[string]string{}, encoding: encoding}
}

// Log records the output under the repository path.
func (renderer *KeyedRenderer) Log(result execshell.ExecutionResult) error {
	if len(result.RepositoryPath) == 0 {
		return ErrRepositoryPathMissing
	}
	renderer.entries[result.RepositoryPath] = result.StandardOutput
	return nil
}

// Render encodes the mapping with keys in sorted order. An empty renderer yields an empty container.
func (renderer *KeyedRenderer) Render() (string, error) {
	var encodedReport bytes.Buffer

	switch renderer.encoding {
	case KeyEncodingJSON:
		encoder := json.NewEncoder(&encodedReport)
		encoder.SetIndent("", jsonIndentConstant)
		encoder.SetEscapeHTML(false)
		if encodeError := encoder.Encode(renderer.entries); encodeError != nil {
			return "", fmt.Errorf(encodeReportErrorTemplate, encodeError)
		}
	case KeyEncodingYAML:
		encoder := yaml.NewEncoder(&encodedReport)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(renderer.entries); encodeError != nil {
			return "", fmt.Errorf(encodeReportErrorTemplate, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return "", fmt.Errorf(encodeReportErrorTemplate, closeError)
		}
	default:
		return "", fmt.Errorf(unsupportedKeyEncodingTemplate, renderer.encoding)
	}

	return encodedReport.String(), nil
}
