package publish

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/arloliu/jointown/types"
)

// Record is the JSON document stored under the world key.
type Record struct {
	types.Snapshot

	// Ownership is the short ownership string of the snapshot.
	Ownership string `json:"ownership"`

	// Digest is the hex ownership digest, see types.Snapshot.Digest.
	Digest string `json:"digest"`
}

// PersonRecord is the JSON document stored under a person key.
type PersonRecord struct {
	Step    int        `json:"step"`
	Tier    types.Tier `json:"tier"`
	Objects []int      `json:"objects"`
}

// NewRecord builds the world record of a snapshot.
func NewRecord(snap types.Snapshot) Record {
	return Record{
		Snapshot:  snap,
		Ownership: snap.Ownership(),
		Digest:    strconv.FormatUint(snap.Digest(), 16),
	}
}

// DecodeRecord parses a world record.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode world record: %w", err)
	}

	return rec, nil
}

// DecodePersonRecord parses a person record.
func DecodePersonRecord(data []byte) (PersonRecord, error) {
	var rec PersonRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return PersonRecord{}, fmt.Errorf("decode person record: %w", err)
	}

	return rec, nil
}

// validKeyToken reports whether id can be used as one token of a KV key.
func validKeyToken(id types.PersonID) bool {
	if id == types.NoOwner {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '=' || c == '/':
		default:
			return false
		}
	}

	return true
}
