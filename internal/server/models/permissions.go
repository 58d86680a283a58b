package models

import (
	"encoding/json"
	"fmt"
)

// ParsePermissions decodes a JSON array of permission names as stored in
// the roles table. Empty input yields no permissions.
func ParsePermissions(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var perms []string
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return perms, nil
}
