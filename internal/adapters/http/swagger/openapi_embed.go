package swagger

import _ "embed"

// Document is the talentflow OpenAPI 3 description served at /openapi.yaml.
//
//go:embed openapi.yaml
var Document []byte
