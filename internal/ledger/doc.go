// Package ledger keeps an optional audit trail of minted ids in Pebble: which
// input row of which run received each id. It is write-only from the
// generator's point of view; nothing here feeds back into id generation.
//
//	l, _ := ledger.Open(ledger.Options{DataDir: dir})
//	run, _ := l.BeginRun(ctx, ledger.RunMeta{Input: "users.csv"})
//	_ = run.Record(ctx, ledger.Entry{ID: id, Line: 2, Row: 1})
//	_ = run.Finish(ctx, ledger.RunStats{Rows: 1}, nil)
//	e, _ := l.Lookup(ctx, id)
package ledger
