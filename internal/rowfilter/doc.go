// Package rowfilter selects which data rows an injection run keeps, using a
// CEL expression such as:
//
//	col.status == "active" && int(col.age) >= 18
//	!line.startsWith("#")
//	row % 2 == 0
package rowfilter
