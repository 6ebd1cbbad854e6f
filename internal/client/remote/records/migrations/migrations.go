// Package migrations embeds the schema of the remote relational store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
