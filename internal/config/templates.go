package config

import (
	"fmt"
	"os"
)

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(Template), 0o600)
}

const Template = `# plain text line limit; base64 tokens may be 5/4 of this
line_limit = 2048

# log when a list ends before every requested attribute was seen
warn_on_missing = false

# stop at the first attribute that was not requested
abort_on_extra = false

log_level = "info"

[server]
name = "attrwire"
addr = "127.0.0.1:9300"
cors_origins = ["http://localhost:3000"]
`
