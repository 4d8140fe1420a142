// Package domain defines the scenario entities the rules engine reads
// and mutates: characters with their card piles, monsters, and NPCs.
//
// Entity lifecycle (creation, room membership, persistence) is owned by
// the session layer; this package only models the fields the engine
// needs and enforces their invariants.
package domain
