package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"github.com/picogrid/brightfleet/pkg/simulation"
)

// EnvPrefix prefixes parameter overrides, e.g. FLEET_TICK_RATE
const EnvPrefix = "FLEET_"

// Interactive reports whether prompts can be shown: stdin is a terminal and
// FLEET_SKIP_PROMPTS is not set
func Interactive() bool {
	if os.Getenv(EnvPrefix+"SKIP_PROMPTS") == "true" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptForParameters asks for every parameter of a simulation. Without a
// terminal the FLEET_<NAME> variable or the default is used instead, and
// optional parameters with neither are left out of the result.
func PromptForParameters(params []simulation.Parameter) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	interactive := Interactive()

	for _, param := range params {
		override, err := envOverride(param)
		if err != nil {
			return nil, fmt.Errorf("invalid %s%s: %w", EnvPrefix, strings.ToUpper(param.Name), err)
		}

		var value interface{}
		switch {
		case interactive:
			if override != nil {
				param.Default = override
			}
			value, err = promptForParameter(param)
		case override != nil:
			value = override
		case param.Default != nil:
			value = param.Default
		case param.Required:
			err = fmt.Errorf("required parameter not provided and no default available")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if value != nil {
			result[param.Name] = value
		}
	}

	return result, nil
}

// envOverride returns the parsed FLEET_<NAME> value, or nil when unset
func envOverride(param simulation.Parameter) (interface{}, error) {
	envValue := os.Getenv(EnvPrefix + strings.ToUpper(param.Name))
	if envValue == "" {
		return nil, nil
	}
	return parseEnvValue(envValue, param)
}

// parseEnvValue parses an environment variable value according to the parameter type
func parseEnvValue(value string, param simulation.Parameter) (interface{}, error) {
	switch param.Type {
	case "integer":
		return strconv.Atoi(value)
	case "float":
		return strconv.ParseFloat(value, 64)
	case "string":
		return value, nil
	case "boolean":
		return strconv.ParseBool(value)
	case "duration":
		return time.ParseDuration(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func promptForParameter(param simulation.Parameter) (interface{}, error) {
	switch param.Type {
	case "integer":
		return promptNumber(param, func(s string) (interface{}, float64, error) {
			i, err := strconv.Atoi(s)
			return i, float64(i), err
		})
	case "float":
		return promptNumber(param, func(s string) (interface{}, float64, error) {
			f, err := strconv.ParseFloat(s, 64)
			return f, f, err
		})
	case "string":
		return promptString(param)
	case "boolean":
		return promptBoolean(param)
	case "duration":
		return promptDuration(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

// promptNumber asks until the answer parses and lies within Min and Max
func promptNumber(param simulation.Parameter, parse func(string) (interface{}, float64, error)) (interface{}, error) {
	bounds := map[string]interface{}{"min": param.Min, "max": param.Max}
	minValue, minErr := simulation.FloatParam(bounds, "min", 0)
	maxValue, maxErr := simulation.FloatParam(bounds, "max", 0)
	hasMin := param.Min != nil && minErr == nil
	hasMax := param.Max != nil && maxErr == nil

	validate := func(val interface{}) error {
		_, n, err := parse(val.(string))
		if err != nil {
			return fmt.Errorf("invalid %s", param.Type)
		}
		if hasMin && n < minValue {
			return fmt.Errorf("value must be at least %v", param.Min)
		}
		if hasMax && n > maxValue {
			return fmt.Errorf("value must be at most %v", param.Max)
		}
		return nil
	}

	var answer string
	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultString(param),
	}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required), survey.WithValidator(validate)); err != nil {
		return nil, err
	}

	value, _, err := parse(answer)
	return value, err
}

func promptString(param simulation.Parameter) (string, error) {
	var result string

	if len(param.Options) > 0 {
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultString(param),
		}
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultString(param),
	}
	var opts []survey.AskOpt
	if param.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if err := survey.AskOne(prompt, &result, opts...); err != nil {
		return "", err
	}
	return result, nil
}

func promptBoolean(param simulation.Parameter) (bool, error) {
	defaultBool := false
	switch v := param.Default.(type) {
	case bool:
		defaultBool = v
	case string:
		defaultBool, _ = strconv.ParseBool(v)
	}

	var result bool
	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func promptDuration(param simulation.Parameter) (time.Duration, error) {
	defaults := map[string]interface{}{"default": param.Default}
	def, err := simulation.DurationParam(defaults, "default", 0)
	defaultStr := ""
	if err == nil && param.Default != nil {
		defaultStr = def.String()
	}

	var result string
	prompt := &survey.Input{
		Message: param.Description + " (e.g., 5m, 1h30m, 30s)",
		Default: defaultStr,
	}
	validate := func(val interface{}) error {
		if _, err := time.ParseDuration(val.(string)); err != nil {
			return fmt.Errorf("invalid duration format (use formats like 5m, 1h30m, 30s)")
		}
		return nil
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validate)); err != nil {
		return 0, err
	}
	return time.ParseDuration(result)
}

func defaultString(param simulation.Parameter) string {
	if param.Default == nil {
		return ""
	}
	return fmt.Sprintf("%v", param.Default)
}
