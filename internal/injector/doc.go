// Package injector rewrites delimited text files so that every data row
// starts with a freshly minted snowflake id.
//
// Given
//
//	name,value
//	alice,1
//
//	bob,2
//
// Transform writes
//
//	id,name,value
//	7193834405101187072,alice,1
//	7193834405101187073,bob,2
//
// Row content is passed through verbatim; blank rows are dropped and an
// empty input yields the single line "id". InjectFile adds the file level
// concerns: input validation, the "<stem>_processed<ext>" output name and an
// atomic replace of the output.
package injector
