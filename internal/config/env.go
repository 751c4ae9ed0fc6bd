package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
)

// EnvPrefix marks the environment variables Load overlays.
const EnvPrefix = "SNOWGEN_"

// envProvider maps SNOWGEN_<SECTION>_<KEY> to section.key, so
// SNOWGEN_NODE_GROUP sets node.group and SNOWGEN_INJECT_HEADER_COLUMN sets
// inject.header_column. Comma separated values become lists for log.outputs
// and log.redact.
func envProvider() *env.Env {
	return env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	})
}

func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok || rest == "" {
		return "", nil
	}
	key = section + "." + rest
	switch key {
	case "log.outputs", "log.redact":
		var parts []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return key, parts
	}
	return key, value
}
