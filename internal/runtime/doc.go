// Package runtime wires configuration, the snowflake generator and the
// optional ID ledger into a single snowgen process. Both the CLI and the
// servers open exactly one Runtime so every id of the process comes from one
// generator.
//
// Example:
//
//	cfg, _ := config.Load("")
//	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
//	if err != nil { /* handle */ }
//	defer rt.Close()
//	res, err := rt.InjectFile(ctx, "users.csv", "")
package runtime
