package config

import (
	"fmt"

	"github.com/kaptinlin/jsonschema"
	"gopkg.in/yaml.v3"
)

// schemaBytes rejects unknown keys and wrong types before the document
// reaches the typed unmarshal. Value ranges live in Config.Validate.
var schemaBytes = []byte(`{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"data_dir": {"type": "string"},
		"db_path": {"type": "string"},
		"artifact_dir": {"type": "string"},
		"max_skip_rate": {"type": "number"},
		"language_threshold": {"type": "number"},
		"summarizer": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"epochs": {"type": "integer"},
				"batch_size": {"type": "integer"},
				"learning_rate": {"type": "number"},
				"lr_decay": {"type": "number"},
				"max_length": {"type": "integer"},
				"max_summary_length": {"type": "integer"},
				"vocab_size": {"type": "integer"},
				"embed_dim": {"type": "integer"},
				"hidden_dim": {"type": "integer"},
				"holdout_fraction": {"type": "number"},
				"seed": {"type": "integer"}
			}
		},
		"categorizer": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"strategy": {"type": "string", "enum": ["ovr", "ovo"]},
				"epochs": {"type": "integer"},
				"learning_rate": {"type": "number"},
				"c": {"type": "number"},
				"embedding_dim": {"type": "integer"},
				"min_class_samples": {"type": "integer"},
				"holdout_fraction": {"type": "number"},
				"seed": {"type": "integer"}
			}
		},
		"fetch": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"api_base_url": {"type": "string"},
				"query": {"type": "string"},
				"language": {"type": "string"},
				"page_size": {"type": "integer"},
				"feeds": {"type": "array", "items": {"type": "string"}},
				"rate_per_sec": {"type": "number"}
			}
		}
	}
}`)

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaBytes)
	if err != nil {
		panic(fmt.Sprintf("config: compile schema: %v", err))
	}
	compiledSchema = schema
}

// validateSchema checks the raw YAML document against the schema.
func validateSchema(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	if doc == nil {
		return nil
	}
	result := compiledSchema.Validate(doc)
	if !result.IsValid() {
		for field, detail := range result.Errors {
			return fmt.Errorf("config: schema violation at %s: %s", field, detail.Message)
		}
		return fmt.Errorf("config: schema violation")
	}
	return nil
}
