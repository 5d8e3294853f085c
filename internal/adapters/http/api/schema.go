package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const profileSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "skills_offered", "skills_wanted"],
  "properties": {
    "id": {"type": "string", "minLength": 1, "maxLength": 128, "pattern": "^[^/\\s]+$"},
    "display_name": {"type": "string", "maxLength": 200},
    "bio": {"type": "string", "maxLength": 4000},
    "experience": {"type": "string", "maxLength": 200},
    "skills_offered": {"type": "array", "items": {"type": "string", "minLength": 1, "maxLength": 100}, "maxItems": 50},
    "skills_wanted": {"type": "array", "items": {"type": "string", "minLength": 1, "maxLength": 100}, "maxItems": 50},
    "institution": {"type": "string", "maxLength": 200},
    "department": {"type": "string", "maxLength": 200},
    "city": {"type": "string", "maxLength": 200},
    "profile_public": {"type": "boolean"},
    "is_banned": {"type": "boolean"},
    "updated_at": {"type": "string", "format": "date-time"}
  },
  "additionalProperties": false
}`

const skillSelectionSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["skills_offered", "skills_wanted"],
  "properties": {
    "skills_offered": {"type": "array", "items": {"type": "string"}},
    "skills_wanted": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	profileSchema        = mustSchema(profileSchemaJSON)
	skillSelectionSchema = mustSchema(skillSelectionSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

// validateBody checks a raw JSON body against schema and joins every
// violation into one message.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed json: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		errs[i] = e.String()
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
}
