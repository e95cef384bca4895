package checks

import (
	"fmt"
	"os"
)

// #region missing-env

// MissingEnv returns the names of required environment variables that are
// not set.
func MissingEnv(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := os.LookupEnv(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// #endregion missing-env

// #region validation-result

// ValidationResult is the outcome of validating the environment.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
	Present []string `json:"present,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// #endregion validation-result

// #region env-validator

// EnvValidator validates environment variables with defaults and per-variable
// checks. Methods chain.
type EnvValidator struct {
	required   []string
	defaults   map[string]string
	validators map[string]func(string) error
}

// NewEnvValidator creates an empty validator.
func NewEnvValidator() *EnvValidator {
	return &EnvValidator{
		defaults:   make(map[string]string),
		validators: make(map[string]func(string) error),
	}
}

// Require marks a variable as required.
func (v *EnvValidator) Require(name string) *EnvValidator {
	v.required = append(v.required, name)
	return v
}

// Default supplies a fallback applied when the variable is unset.
func (v *EnvValidator) Default(name, value string) *EnvValidator {
	v.defaults[name] = value
	return v
}

// Check attaches a value check run when the variable is present.
func (v *EnvValidator) Check(name string, fn func(string) error) *EnvValidator {
	v.validators[name] = fn
	return v
}

// Validate checks every required variable, applying defaults for unset ones.
func (v *EnvValidator) Validate() ValidationResult {
	var result ValidationResult
	for _, name := range v.required {
		value, ok := os.LookupEnv(name)
		if !ok {
			if def, has := v.defaults[name]; has {
				os.Setenv(name, def)
				value = def
				result.Present = append(result.Present, name)
			} else {
				result.Missing = append(result.Missing, name)
				continue
			}
		} else {
			result.Present = append(result.Present, name)
		}

		if check, has := v.validators[name]; has {
			if err := check(value); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			}
		}
	}
	result.Valid = len(result.Missing) == 0 && len(result.Errors) == 0
	return result
}

// #endregion env-validator
