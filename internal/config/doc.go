// Package config loads snowgen configuration. Default() mirrors the stock
// deployment (node 24/30, "id" header column, comma delimiter); Load layers a
// YAML or JSON file and SNOWGEN_* environment variables on top using koanf.
//
// Example:
//
//	cfg, err := config.Load("/etc/snowgen.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	gen, err := snowflake.NewFromIdentity(cfg.Node)
package config
