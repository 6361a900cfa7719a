// Package migrations holds the embedded control-plane schema. The SQL
// files sit at the root of the embedded FS because goose collects
// migrations with a root-level *.sql glob.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
