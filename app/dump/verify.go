package dump

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
)

//go:generate go run ./internal/schema schema.json

const (
	// import retry limits
	minAttempts = 1
	maxAttempts = 100
	minFactor   = 1.0
	maxFactor   = 10.0
	minDuration = time.Millisecond
	maxDuration = time.Hour
)

//go:embed schema.json
var embeddedSchemaData []byte

// GenerateSchema makes JSON schema of the snapshot file
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Snapshot{})
}

// Verify checks the snapshot against the embedded JSON schema and rejects snapshots
// which can't be imported without losing jobs
func Verify(snap Snapshot) error {
	var schema map[string]any
	if err := json.Unmarshal(embeddedSchemaData, &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	minName := 1
	if v, ok := lookup(schema, "$defs", "Queue", "properties", "name", "minLength").(float64); ok {
		minName = int(v)
	}

	if err := validateQueues(snap.Queues, minName); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}
	return nil
}

// lookup walks nested schema objects by keys, nil if any key is missing
func lookup(schema map[string]any, keys ...string) any {
	var res any = schema
	for _, k := range keys {
		m, ok := res.(map[string]any)
		if !ok {
			return nil
		}
		res = m[k]
	}
	return res
}

// validateQueues requires named, distinct queues and distinct explicit task ids within a queue
func validateQueues(queues []Queue, minName int) error {
	names := make(map[string]bool, len(queues))
	for i, q := range queues {
		if q.Name == "" {
			return fmt.Errorf("queue %d: name is required", i+1)
		}
		if len(q.Name) < minName {
			return fmt.Errorf("queue %d: name %q is shorter than %d", i+1, q.Name, minName)
		}
		if names[q.Name] {
			return fmt.Errorf("queue %d: duplicate queue %q", i+1, q.Name)
		}
		names[q.Name] = true

		ids := make(map[string]bool, len(q.Jobs))
		for j, job := range q.Jobs {
			if job.TaskID == "" {
				continue // generated on import
			}
			if ids[job.TaskID] {
				return fmt.Errorf("queue %q, job %d: duplicate task id %q", q.Name, j+1, job.TaskID)
			}
			ids[job.TaskID] = true
		}
	}
	return nil
}

// validateImportParams checks retry settings, zero value means the default
func validateImportParams(params ImportParams) error {
	if params.Attempts != 0 && (params.Attempts < minAttempts || params.Attempts > maxAttempts) {
		return fmt.Errorf("attempts must be between %d and %d", minAttempts, maxAttempts)
	}

	if params.Duration != 0 {
		if params.Duration < minDuration {
			return fmt.Errorf("duration must be at least %v", minDuration)
		}
		if params.Duration > maxDuration {
			return fmt.Errorf("duration must not exceed %v", maxDuration)
		}
	}

	if params.Factor != 0 && (params.Factor < minFactor || params.Factor > maxFactor) {
		return fmt.Errorf("factor must be between %.1f and %.1f", minFactor, maxFactor)
	}
	return nil
}
