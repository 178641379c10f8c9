// Package article defines the read-only article projection served by the
// preview resolver and the lookup contract its stores implement.
package article
