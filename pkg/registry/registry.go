// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vehicle-search/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a registry document and compiles every input schema so a
// broken schema fails at startup rather than on the first job.
func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	seen := make(map[string]bool, len(reg.Activities))
	for _, a := range reg.Activities {
		if a.TaskType == "" {
			return nil, fmt.Errorf("activity %q has no taskType", a.ID)
		}
		if seen[a.TaskType] {
			return nil, fmt.Errorf("duplicate taskType %q", a.TaskType)
		}
		seen[a.TaskType] = true
		if a.InputSchema != nil {
			if _, err := validation.NewValidator(a.InputSchema); err != nil {
				return nil, fmt.Errorf("activity %q: %w", a.ID, err)
			}
		}
	}
	return &reg, nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Implemented lists the activities ready to be served.
func (r *ActivityRegistry) Implemented() []Activity {
	var out []Activity
	for _, a := range r.Activities {
		if a.ImplementationStatus == StatusImplemented {
			out = append(out, a)
		}
	}
	return out
}

// InputValidator compiles the input schema. It is nil, with no error,
// when the activity has no schema.
func (a *Activity) InputValidator() (*validation.Validator, error) {
	if a.InputSchema == nil {
		return nil, nil
	}
	return validation.NewValidator(a.InputSchema)
}

// ValidateInput checks job variables against the input schema. An
// activity without a schema accepts anything.
func (a *Activity) ValidateInput(vars map[string]interface{}) *validation.ValidationResult {
	v, err := a.InputValidator()
	if v == nil && err == nil {
		return &validation.ValidationResult{Valid: true}
	}
	if err != nil {
		return &validation.ValidationResult{Errors: []validation.ValidationError{{
			Field: "(schema)", Message: err.Error(), Code: "INVALID_SCHEMA",
		}}}
	}
	return v.Validate(vars)
}

// TimeoutDuration parses Timeout, falling back to def when it is empty or malformed.
func (a *Activity) TimeoutDuration(def time.Duration) time.Duration {
	if a.Timeout == "" {
		return def
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
