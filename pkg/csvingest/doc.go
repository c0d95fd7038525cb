// Package csvingest converts a selected file into structured CSV rows.
//
// Ingest has a single suspension point, reading the whole file, and fails
// explicitly with ErrEmptyResult when the file yields no data rows. A file
// with nothing in it must block submission, so an empty success is never
// returned.
package csvingest
