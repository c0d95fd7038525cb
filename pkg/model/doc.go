// Package model defines the data shared by the form engine and the results
// view: field names, the subscription tier enumeration, the opaque file handle
// consumed by CSV ingestion, ordered CSV rows, the in-progress FormValues and
// the frozen FormSnapshot handed across views. Values in this package carry no
// behaviour beyond copying and lookup so every other package can depend on it.
package model
