package lib

import "errors"

var (
	// BadUserInputError marks failures caused by invalid configuration or
	// command input, as opposed to infrastructure failures.
	BadUserInputError = errors.New("bad user input")
)
