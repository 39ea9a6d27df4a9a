package config

import "errors"

var (
	ErrReadFile = errors.New("config: read file")
	ErrParse    = errors.New("config: parse yaml")
)
