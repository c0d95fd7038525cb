// Package template defines the template engine seam used by the HTML results
// renderer. The pongo2 implementation lives in the gotemplate subpackage.
package template
