package strategy

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// parseConfig unmarshals params on top of the defaults already held by config and validates the result.
func parseConfig(params string, config any) error {
	if strings.TrimSpace(params) != "" {
		if err := json.Unmarshal([]byte(params), config); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy params", err)
		}
	}

	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy params", err)
	}

	return nil
}

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to marshal config schema", err)
	}

	return string(jsonSchemaBytes), nil
}
