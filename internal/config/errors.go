package config

import "errors"

// ErrMalformed is returned for XML that fails to parse or references an
// unresolvable attribute (base-spec §7 "Malformed problem").
var ErrMalformed = errors.New("config: malformed problem document")
