// Package openapi embeds the HTTP API description served at /api/openapi.{yaml,json}.
package openapi

import _ "embed"

//go:embed openapi.yaml
var Document []byte
