package config

import (
	"errors"
	"fmt"
	"regexp"
)

// ${VAR_NAME} or ${VAR_NAME:default}; the colon is captured so that an empty
// default can be told apart from no default.
var envVarWithDefaultPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:default} references using
// lookup. A reference to an unset variable without a default is left in place
// and reported in the returned error.
func ExpandEnvVars(input string, lookup func(string) (string, bool)) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarWithDefaultPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarWithDefaultPattern.FindStringSubmatch(match)
		name, hasDefault, def := sub[1], sub[2] == ":", sub[3]

		if lookup != nil {
			if value, ok := lookup(name); ok {
				return value
			}
		}
		if hasDefault {
			return def
		}
		missing = append(missing, fmt.Errorf("%w: environment variable not defined: %s", ErrInvalidConfig, name))
		return match
	})
	return result, errors.Join(missing...)
}

// expandEnv interpolates the string settings of the file.
func (c *FileConfig) expandEnv(lookup func(string) (string, bool)) error {
	var errs []error

	listen, err := ExpandEnvVars(c.Listen, lookup)
	errs = append(errs, err)
	c.Listen = listen

	level, err := ExpandEnvVars(c.LogLevel.String(), lookup)
	errs = append(errs, err)
	c.LogLevel = LogLevel(level)

	format, err := ExpandEnvVars(c.LogFormat.String(), lookup)
	errs = append(errs, err)
	c.LogFormat = LogFormat(format)

	return errors.Join(errs...)
}
