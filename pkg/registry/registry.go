// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &reg, nil
}

// Validate requires unique ids and task types and a parseable timeout on every activity.
func (r *ActivityRegistry) Validate() error {
	ids := make(map[string]struct{}, len(r.Activities))
	types := make(map[string]struct{}, len(r.Activities))
	for i, a := range r.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity #%d: id and taskType are required", i+1)
		}
		if _, dup := ids[a.ID]; dup {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		if _, dup := types[a.TaskType]; dup {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		ids[a.ID] = struct{}{}
		types[a.TaskType] = struct{}{}

		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				return fmt.Errorf("activity %q: timeout: %w", a.ID, err)
			}
		}
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}
