// Package domain defines the core business entities and their validation
// rules. Entities are plain structs with constructor functions that enforce
// invariants; persistence concerns live in the store packages.
package domain
