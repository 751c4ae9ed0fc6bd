// Package snowflake provides a 64-bit, time-ordered unique identifier generator.
//
// # Format
//
// An ID is a non-negative int64 laid out high to low as:
//
//	[1 bit sign = 0][41 bits ms since Epoch][5 bits node group][5 bits node instance][12 bits sequence]
//
// Numeric comparison of two IDs from the same generator preserves the order in
// which they were minted. IDs minted by generators configured with different
// node identities never collide.
//
// # Monotonicity
//
// The Generator refuses to go backwards:
//   - If the clock regresses, Generate fails with a ClockRegressionError and
//     leaves its state untouched so later calls can succeed once the clock
//     catches up.
//   - If the 4096 sequence values of a millisecond are spent, callers wait for
//     the next millisecond with the lock released. Waiting callers sleep in
//     proportion to how many others already wait on the same millisecond.
//
// Usage
//
//	g, err := snowflake.New(24, 30)
//	if err != nil { /* ConfigError */ }
//	id, err := g.Generate(ctx)
//	parts := snowflake.Decode(id)
//	s := snowflake.FormatBase58.Encode(id)
package snowflake
