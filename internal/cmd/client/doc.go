// Package client provides the `snowgen` command-line interface.
//
// Commands run against an in-process generator by default. mint, decode
// and lookup accept --grpc to talk to a running `snowgen serve` instead,
// which is required for lookups while the server holds the ledger open.
//
// Installation
//
//	go install github.com/DJ45X/snowgen/cmd/snowgen@latest
//
// # Configuration
//
// --config loads a YAML or JSON file; SNOWGEN_* environment variables
// override it (SNOWGEN_NODE_GROUP=3 sets node.group) and flags override
// both.
//
// Usage
//
//	snowgen inject customers.csv
//	Processing file: customers.csv
//	Successfully processed 2 data rows.
//	Output written to: customers_processed.csv
//
//	snowgen inject orders.txt --delimiter ";" --where 'col["status"] == "paid"' --ledger ./data/ledger
//
//	snowgen mint --count 3 --id-format base58
//
//	snowgen decode 1541815603606036480
//
//	snowgen lookup 1541815603606036480 --ledger ./data/ledger
//
//	snowgen serve --grpc :7070 --http :8080 --ledger ./data/ledger
package client
