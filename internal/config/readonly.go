package config

import (
	"strconv"
	"strings"
)

const (
	// EnvReadOnly is the environment variable consulted for the read-only gate.
	EnvReadOnly = "DEPLOYHQ_READ_ONLY"

	// FlagReadOnly is the command line flag name for the read-only gate.
	FlagReadOnly = "read-only"

	// DefaultReadOnly applies when no source sets the gate.
	DefaultReadOnly = false
)

// Source labels reported by ServerConfig.Source.
const (
	SourceFlag    = "CLI flag"
	SourceFile    = "config file"
	SourceDefault = "default"
)

// ServerConfig is the resolved process-wide gate setting. It is computed once
// at startup and never changes for the life of the process.
type ServerConfig struct {
	ReadOnlyMode bool
	Source       string
}

// ParseBool interprets the accepted spellings of a boolean setting. Matching
// is case-insensitive and ignores surrounding whitespace.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}

// readOnlyArg reports whether arg is the read-only flag in any spelling the
// CLI parser accepts: one or two leading dashes, with or without "=value".
func readOnlyArg(arg string) (raw string, hasValue, matched bool) {
	name, ok := strings.CutPrefix(arg, "--")
	if !ok {
		if name, ok = strings.CutPrefix(arg, "-"); !ok {
			return "", false, false
		}
	}
	if name == FlagReadOnly {
		return "", false, true
	}
	if raw, ok := strings.CutPrefix(name, FlagReadOnly+"="); ok {
		return raw, true, true
	}
	return "", false, false
}

// ReadOnlyFromArgs scans args for the read-only flag. A bare flag means true.
// An explicit value that is not recognized also means true, so a typo never
// unlocks writes. When the flag appears more than once the first occurrence
// wins. Scanning stops at the "--" terminator.
func ReadOnlyFromArgs(args []string) (value, ok bool) {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		raw, hasValue, matched := readOnlyArg(arg)
		if !matched {
			continue
		}
		if !hasValue {
			return true, true
		}
		if v, recognized := ParseBool(raw); recognized {
			return v, true
		}
		return true, true
	}
	return false, false
}

// NormalizeArgs rewrites every read-only flag carrying a value into the
// canonical "--read-only=true|false" form understood by the CLI flag parser.
// Arguments after "--" are left alone. The input slice is not modified.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range args {
		if arg == "--" {
			break
		}
		raw, hasValue, matched := readOnlyArg(arg)
		if !matched || !hasValue {
			continue
		}
		v, recognized := ParseBool(raw)
		if !recognized {
			v = true
		}
		out[i] = "--" + FlagReadOnly + "=" + strconv.FormatBool(v)
	}
	return out
}

// ResolveServerConfig determines the read-only gate. Precedence is the
// command line flag, then DEPLOYHQ_READ_ONLY, then the config file, then the
// default. An environment value that is not recognized is ignored.
func ResolveServerConfig(args []string, lookupEnv func(string) (string, bool), file *FileConfig) ServerConfig {
	if v, ok := ReadOnlyFromArgs(args); ok {
		return ServerConfig{ReadOnlyMode: v, Source: SourceFlag}
	}

	if lookupEnv != nil {
		if raw, set := lookupEnv(EnvReadOnly); set {
			if v, ok := ParseBool(raw); ok {
				return ServerConfig{ReadOnlyMode: v, Source: EnvReadOnly + "=" + raw}
			}
		}
	}

	if file != nil && file.ReadOnly != nil {
		return ServerConfig{ReadOnlyMode: *file.ReadOnly, Source: SourceFile}
	}

	return ServerConfig{ReadOnlyMode: DefaultReadOnly, Source: SourceDefault}
}
