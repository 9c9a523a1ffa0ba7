// Package publish mirrors World snapshots into a NATS JetStream KeyValue bucket.
//
// Keys are laid out under a prefix (DefaultPrefix unless configured):
//
//	<prefix>.world            Record: step, persons, owners, capitals, tiers
//	<prefix>.person.<id>      PersonRecord: tier and owned objects of one person
//
// Person keys of departed persons are deleted on the next publish. Persons
// whose ids are not valid KV key tokens only appear in the world record.
package publish
