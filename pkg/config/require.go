package config

import (
	"errors"
	"fmt"
)

var ErrMissingEnv = errors.New("missing required env")

// NonEmpty reports a missing setting by its environment variable name.
func NonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("%w %s", ErrMissingEnv, envName)
	}
	return nil
}

func NonEmptyBytes(value []byte, envName string) error {
	if len(value) == 0 {
		return fmt.Errorf("%w %s", ErrMissingEnv, envName)
	}
	return nil
}
