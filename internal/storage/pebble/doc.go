// Package pebblestore provides a thin wrapper around Pebble with an fsync
// policy, batches, prefix iteration and a minimal metrics hook. The ID
// ledger is its only caller.
//
// Usage:
//
//	mode, _ := pebblestore.ParseFsyncMode("interval")
//	db, err := pebblestore.Open(pebblestore.Options{DataDir: "./ledger", Fsync: mode})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(ctx, b)
//	b.Close()
//
//	iter, _ := db.NewIter(pebblestore.PrefixIterOptions([]byte("run/")))
package pebblestore
