// Package idsvc implements the id operations shared by the gRPC and HTTP
// transports and the CLI: mint, decode, parse and ledger lookup.
//
// Example:
//
//	svc := idsvc.New(rt)
//	ids, _ := svc.Mint(ctx, 10)
//	d, _ := svc.Decode(ids[0])
//	rec, err := svc.Lookup(ctx, ids[0]) // idsvc.ErrNoLedger without a ledger
package idsvc
