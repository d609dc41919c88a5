package config

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schemaSrc constrains a fully defaulted configuration
const schemaSrc = `
general: {
	name:        string & !=""
	environment: "development" | "production" | "test"
}
analyzer: {
	max_input_length: int & >0 & <=16777216
	default_format:   "text" | "tree" | "tuple" | "json" | "yaml"
	cache_size:       int & >=0 & <=1048576
	cache_ttl:        string
}
log: {
	level:   "debug" | "info" | "warn" | "error"
	format:  "text" | "json"
	file:    string
	journal: bool
}
server: {
	port:             int & >0 & <=65535
	host:             string
	read_timeout:     string
	write_timeout:    string
	max_request_size: int & >0
	cors: {
		enabled:         bool
		allowed_origins: [...string] | null
	}
}
grpc: {
	enabled: bool
	port:    int & >0 & <=65535
	host:    string
}
tui: {
	input_height: int & >=1 & <=50
	tree_format:  "tree" | "tuple"
}
`

// validateSchema unifies the JSON form of a config with the schema
func validateSchema(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString("close({" + schemaSrc + "})")
	if err := schema.Err(); err != nil {
		return err
	}

	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return err
	}

	return schema.Unify(value).Validate(cue.Concrete(true))
}
