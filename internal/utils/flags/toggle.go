package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTypeName                    = "toggle"
	toggleTrueCanonicalValue          = "true"
	toggleFalseCanonicalValue         = "false"
	toggleParseErrorTemplate          = "invalid toggle value %q (expected yes or no)"
	toggleUsageTemplate               = "`%s` %s"
	toggleUsagePlaceholderOnlyForm    = "`%s`"
	toggleEnabledPlaceholderConstant  = "<YES|no>"
	toggleDisabledPlaceholderConstant = "<yes|NO>"
	longFlagPrefix                    = "--"
	shortFlagPrefix                   = "-"
	flagValueSeparator                = "="
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"1":     true,
	"t":     true,
	"false": false,
	"no":    false,
	"n":     false,
	"off":   false,
	"0":     false,
	"f":     false,
}

// AddToggleFlag registers a boolean flag that accepts yes/no style values.
// The bare flag enables the option; an explicit value may disable it.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{target: target}
	value.assign(defaultValue)
	flagSet.VarP(value, name, shorthand, formatToggleUsage(usage, defaultValue))
	flagSet.Lookup(name).NoOptDefVal = toggleTrueCanonicalValue
}

// NormalizeToggleArguments joins "--flag value" into "--flag=value" for toggle flags of flagSet
// so that pflag does not treat the value as a positional argument.
func NormalizeToggleArguments(flagSet *pflag.FlagSet, arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefix {
			return append(normalized, arguments[index:]...)
		}

		if index+1 < len(arguments) && isBareToggle(flagSet, current) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparator+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

type toggleValue struct {
	current bool
	target  *bool
}

func (value *toggleValue) assign(enabled bool) {
	value.current = enabled
	if value.target != nil {
		*value.target = enabled
	}
}

func (value *toggleValue) Set(rawValue string) error {
	enabled, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}
	value.assign(enabled)
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.current {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleTypeName
}

func parseToggleValue(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	enabled, known := toggleLiterals[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return enabled, nil
}

func isToggleLiteral(candidate string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(candidate))]
	return known
}

func isBareToggle(flagSet *pflag.FlagSet, argument string) bool {
	if flagSet == nil || strings.Contains(argument, flagValueSeparator) {
		return false
	}

	var flag *pflag.Flag
	switch {
	case strings.HasPrefix(argument, longFlagPrefix):
		flag = flagSet.Lookup(strings.TrimPrefix(argument, longFlagPrefix))
	case strings.HasPrefix(argument, shortFlagPrefix) && len(argument) == 2:
		flag = flagSet.ShorthandLookup(strings.TrimPrefix(argument, shortFlagPrefix))
	}
	return flag != nil && flag.Value.Type() == toggleTypeName
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsagePlaceholderOnlyForm, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplate, placeholder, trimmedDescription)
}
