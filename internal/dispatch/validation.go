package dispatch

import (
	"fmt"
	"math"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/webforge/scenecore/internal/component"
)

// ValidationError is a dispatch-time payload rejection. It is returned to
// the caller and never queued.
type ValidationError struct {
	Command string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: invalid payload: %s", e.Command, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Command, e.Field, e.Reason)
}

func invalid(cmd, field, format string, args ...any) *ValidationError {
	return &ValidationError{Command: cmd, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func decode(cmd string, payload json.RawMessage, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return invalid(cmd, "", "%v", err)
	}
	return nil
}

func requireID(cmd, field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(cmd, field, "required")
	}
	return nil
}

func requireIDs(cmd, field string, ids []string) error {
	if len(ids) == 0 {
		return invalid(cmd, field, "must not be empty")
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return invalid(cmd, fmt.Sprintf("%s[%d]", field, i), "required")
		}
	}
	return nil
}

func checkVec3(cmd, field string, v *component.Vec3) error {
	if v != nil && !v.Finite() {
		return invalid(cmd, field, "must be finite")
	}
	return nil
}

// checkQuat validates and normalizes a rotation in place.
func checkQuat(cmd, field string, q *component.Quat) error {
	if q == nil {
		return nil
	}
	if !q.Finite() {
		return invalid(cmd, field, "must be finite")
	}
	if q[0] == 0 && q[1] == 0 && q[2] == 0 && q[3] == 0 {
		return invalid(cmd, field, "must be non-zero")
	}
	*q = q.Normalized()
	return nil
}

func checkRange(cmd, field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return invalid(cmd, field, "must be within [%g, %g]", lo, hi)
	}
	return nil
}

func checkOneOf(cmd, field, v string, allowed ...string) error {
	if !slices.Contains(allowed, v) {
		return invalid(cmd, field, "must be one of %s", strings.Join(allowed, ", "))
	}
	return nil
}
