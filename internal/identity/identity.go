// Package identity derives stable vector point identifiers from document store record ids.
package identity

import "github.com/google/uuid"

// PointID maps a document store record id to an RFC 4122 version 5 UUID over
// the DNS namespace. The mapping is pure and deterministic: the same record id
// always yields the same point id, so re-indexing a record overwrites its
// vector point instead of inserting a duplicate.
func PointID(recordID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(recordID))
}
