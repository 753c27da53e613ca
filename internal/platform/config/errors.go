package config

import "errors"

var (
	ErrInvalidBaseURL = errors.New("backend base URL must be http or https")
	ErrUnknownPreset  = errors.New("unknown date preset")
)
