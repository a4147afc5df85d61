package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue  = "true"
	toggleFalseCanonicalValue = "false"
	toggleParseErrorTemplate  = "invalid toggle value %q"
	toggleEnabledPlaceholder  = "<YES|no>"
	toggleDisabledPlaceholder = "<yes|NO>"
	argumentTerminatorLiteral = "--"
	longFlagPrefixLiteral     = "--"
	shortFlagPrefixLiteral    = "-"
	flagValueSeparatorLiteral = "="
)

// toggleFlagRegistry tracks registered toggle flag names and shorthands so
// argument normalization can recognize them before cobra parses flags.
type toggleFlagRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggleFlags = &toggleFlagRegistry{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

func (registry *toggleFlagRegistry) register(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

func (registry *toggleFlagRegistry) knownName(name string) bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	_, exists := registry.names[name]
	return exists
}

func (registry *toggleFlagRegistry) knownShorthand(shorthand string) bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	_, exists := registry.shorthands[shorthand]
	return exists
}

// AddToggleFlag registers a boolean toggle flag that accepts yes/no style values.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	if target != nil {
		*target = defaultValue
	}
	toggleValue := &toggleFlagValue{currentValue: defaultValue, target: target}

	if len(shorthand) > 0 {
		flagSet.VarP(toggleValue, name, shorthand, usage)
	} else {
		flagSet.Var(toggleValue, name, usage)
	}

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = toggleTrueCanonicalValue
	registeredFlag.Usage = formatToggleUsage(usage, defaultValue)

	registeredToggleFlags.register(name, shorthand)
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholder
	if defaultValue {
		placeholder = toggleEnabledPlaceholder
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmedDescription)
}

// NormalizeToggleArguments rewrites toggle flag arguments so "--flag value" becomes "--flag=value" before parsing.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		currentArgument := arguments[index]
		if currentArgument == argumentTerminatorLiteral {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if !referencesToggleFlag(currentArgument) || strings.Contains(currentArgument, flagValueSeparatorLiteral) {
			normalized = append(normalized, currentArgument)
			index++
			continue
		}

		if index+1 >= len(arguments) || strings.HasPrefix(arguments[index+1], shortFlagPrefixLiteral) {
			normalized = append(normalized, currentArgument)
			index++
			continue
		}

		normalized = append(normalized, currentArgument+flagValueSeparatorLiteral+arguments[index+1])
		index += 2
	}

	return normalized
}

func referencesToggleFlag(argument string) bool {
	if strings.HasPrefix(argument, longFlagPrefixLiteral) {
		flagName := strings.TrimPrefix(argument, longFlagPrefixLiteral)
		if separatorIndex := strings.Index(flagName, flagValueSeparatorLiteral); separatorIndex >= 0 {
			flagName = flagName[:separatorIndex]
		}
		return len(flagName) > 0 && registeredToggleFlags.knownName(flagName)
	}

	if strings.HasPrefix(argument, shortFlagPrefixLiteral) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixLiteral)
		if separatorIndex := strings.Index(shorthand, flagValueSeparatorLiteral); separatorIndex >= 0 {
			shorthand = shorthand[:separatorIndex]
		}
		return len(shorthand) == 1 && registeredToggleFlags.knownShorthand(shorthand)
	}

	return false
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}

	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return "bool"
}

func parseToggleValue(rawValue string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(rawValue)) {
	case "", toggleTrueCanonicalValue, "yes", "on", "1", "t", "y":
		return true, nil
	case toggleFalseCanonicalValue, "no", "off", "0", "f", "n":
		return false, nil
	}
	return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
}
