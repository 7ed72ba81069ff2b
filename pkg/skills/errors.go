package skills

import "fmt"

// ConfigurationError indicates the custom skill YAML document could not be
// parsed at all. The registry still loads with builtin skills; the custom
// portion is dropped.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("custom skill configuration is not valid YAML: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a single skill record is malformed (missing a
// required field or carrying a value of the wrong shape). Only the offending
// record is dropped; sibling records still load.
type ValidationError struct {
	Skill  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Skill == "" {
		return fmt.Sprintf("invalid skill record: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid skill %q: %s: %s", e.Skill, e.Field, e.Reason)
}
