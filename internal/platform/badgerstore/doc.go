// Package badgerstore implements task.Store on an embedded BadgerDB, so task
// records survive a restart without an external database.
//
// Each task is one JSON value under the key "task/<id>". Updates are
// read-modify-write transactions; a transaction that loses a conflict is
// retried.
package badgerstore
