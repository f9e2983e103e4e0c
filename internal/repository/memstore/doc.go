// Package memstore holds in-process implementations of the repository
// contracts.  They follow the same compare-and-set semantics as the MySQL
// repositories: every guarded transition happens under a lock scoped to the
// key being changed, and sentinel errors come from the repository package.
// They back STORE_DRIVER=memory and the service tests.
package memstore
