/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the version of the embedded configuration schema.
const SchemaVersion = "1.0.0"

//go:embed schemas/gig-config-v1.json
var configSchema []byte

// ErrInvalidConfigFile is returned when a config file does not match the schema.
var ErrInvalidConfigFile = errors.New("configuration validation failed")

// ValidateConfigBytes checks a YAML (or JSON) config document against the
// embedded schema. An empty document is valid.
func ValidateConfigBytes(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: not valid YAML: %v", ErrInvalidConfigFile, err)
	}
	if doc == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(configSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w:\n%s", ErrInvalidConfigFile, strings.Join(msgs, "\n"))
	}
	return nil
}
