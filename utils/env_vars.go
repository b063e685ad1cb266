package utils

import (
	"log"
	"os"
	"strconv"
	"time"
)

type envTypes interface {
	string | int | bool | time.Duration
}

// GetEnv returns the value of the environment variable, converted to T, or
// defaultValue when the variable is unset or empty.
func GetEnv[T envTypes](envVar string, defaultValue T) T {
	envValue, ok := os.LookupEnv(envVar)
	if !ok || envValue == "" {
		return defaultValue
	}

	value, err := parseEnvValue[T](envValue)
	if err != nil {
		log.Fatalf("environment variable %s is not valid: '%s' cannot be converted to %T", envVar, envValue, defaultValue)
	}
	return value
}

// GetRequiredEnv is like GetEnv but exits when the variable is unset.
func GetRequiredEnv[T envTypes](envVar string) T {
	envValue, ok := os.LookupEnv(envVar)
	if !ok || envValue == "" {
		log.Fatalf("%s environment variable is required", envVar)
	}

	value, err := parseEnvValue[T](envValue)
	if err != nil {
		var zero T
		log.Fatalf("environment variable %s is not valid: '%s' cannot be converted to %T", envVar, envValue, zero)
	}
	return value
}

func parseEnvValue[T envTypes](raw string) (T, error) {
	var zero T

	switch any(zero).(type) {
	case string:
		return any(raw).(T), nil
	case int:
		intValue, err := strconv.Atoi(raw)
		if err != nil {
			return zero, err
		}
		return any(intValue).(T), nil
	case bool:
		boolValue, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, err
		}
		return any(boolValue).(T), nil
	case time.Duration:
		durationValue, err := time.ParseDuration(raw)
		if err != nil {
			return zero, err
		}
		return any(durationValue).(T), nil
	}
	return zero, nil
}
