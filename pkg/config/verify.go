package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// parse schema
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON, keys must be described by the schema
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := checkKnownKeys(schema, configMap); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// checkKnownKeys verifies that every top-level config key is a schema property
func checkKnownKeys(schema, configMap map[string]interface{}) error {
	props := schemaProperties(schema)
	if props == nil {
		return nil
	}
	for key := range configMap {
		if _, ok := props[key]; !ok {
			return fmt.Errorf("unknown config section %q", key)
		}
	}
	return nil
}

// schemaProperties finds the root properties, either inline or behind the $ref of a reflected schema
func schemaProperties(schema map[string]interface{}) map[string]interface{} {
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		return props
	}
	defs, ok := schema["$defs"].(map[string]interface{})
	if !ok {
		return nil
	}
	root, ok := defs["Config"].(map[string]interface{})
	if !ok {
		return nil
	}
	props, _ := root["properties"].(map[string]interface{})
	return props
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if cfg.QuotaAPI.Enabled && cfg.QuotaAPI.BaseURL == "" {
		return fmt.Errorf("quota_api.base_url is required when quota api is enabled")
	}
	if cfg.ScrapedFeed.Enabled && cfg.ScrapedFeed.Selectors.Container == "" {
		return fmt.Errorf("scraped_feed.selectors.container is required when scraped feed is enabled")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
