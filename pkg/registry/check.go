// pkg/registry/check.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vehicle-search/internal/common/errors"
	"vehicle-search/internal/common/validation"
)

// Check lists every problem in the registry. Parse already rejects
// missing task types and broken input schemas; Check also covers the
// fields a worker manager can run without.
func (r *ActivityRegistry) Check() []error {
	var problems []error
	if len(r.Activities) == 0 {
		return append(problems, fmt.Errorf("registry contains no activities"))
	}

	ids := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, fmt.Errorf("activity %q has no id", a.TaskType))
		} else if ids[a.ID] {
			problems = append(problems, fmt.Errorf("duplicate activity id %q", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("activity %s: missing displayName", a.ID))
		}
		if a.Category == "" {
			problems = append(problems, fmt.Errorf("activity %s: missing category", a.ID))
		}
		if a.Timeout != "" {
			if d, err := time.ParseDuration(a.Timeout); err != nil || d <= 0 {
				problems = append(problems, fmt.Errorf("activity %s: bad timeout %q", a.ID, a.Timeout))
			}
		}
		if a.OutputSchema != nil {
			if _, err := validation.NewValidator(a.OutputSchema); err != nil {
				problems = append(problems, fmt.Errorf("activity %s: output schema: %w", a.ID, err))
			}
		}
		for _, code := range a.ErrorCodes {
			if _, ok := errors.BPMNErrorMapping[errors.ErrorCode(code)]; !ok {
				problems = append(problems, fmt.Errorf("activity %s: unknown error code %s", a.ID, code))
			}
		}
	}
	return problems
}

// Set changes one field of the activity with the given id.
func (r *ActivityRegistry) Set(id, field, value string) error {
	var a *Activity
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			a = &r.Activities[i]
			break
		}
	}
	if a == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "timeout":
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q", value)
		}
		a.Timeout = value
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retries value %q", value)
		}
		a.Retries = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	r.LastUpdated = time.Now().Format("2006-01-02")
	return nil
}

// Save writes the registry as indented JSON.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
