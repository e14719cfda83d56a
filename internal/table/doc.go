// Package table renders typed records into a header/body grid.
//
// A Table owns cell layout: one header cell per column, one row per record in
// input order, one cell per column per row. Callers own the column
// descriptors, the row identity extractor and the row container; the table
// never inspects a record except through its columns.
package table
