// Package cli implements the interactive field client: a small REPL through
// which an auditor captures rack photos and damage findings while offline,
// and which drains them to the remote stores whenever connectivity returns.
//
// Commands
//
//	help              show available commands
//	photo <file>      store a JPG/PNG locally; it is attached to the next record
//	add               enter a damage finding (queued locally, then a sync is triggered)
//	pending | list    list queued records
//	sync              drain the queue now and print a report
//	auditors          list auditors from the remote store
//	status            connectivity, queue length and sync state
//	migrate           apply the remote schema
//	exit | quit       leave the program
package cli
