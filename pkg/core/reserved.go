package core

import "strings"

// Reserved schema objects. Names carrying ReservedPrefix belong to sqledit
// and are hidden from every catalog listing.
const (
	ReservedPrefix   = "__sqledit_"
	CredentialsTable = ReservedPrefix + "credentials"
	MigrationsTable  = ReservedPrefix + "migrations"

	// EnginePrefix marks tables the engine maintains itself (sqlite_sequence, sqlite_stat1, ...).
	EnginePrefix = "sqlite_"
)

// Default account written to a freshly initialized credentials table.
const (
	DefaultUsername = "admin"
	DefaultPassword = "admin"
)

// IsReservedName reports whether name refers to a sqledit-owned object.
// The engine treats table names case-insensitively, so the check does too.
func IsReservedName(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), ReservedPrefix)
}

// IsInternalName reports whether name refers to an engine-maintained object.
func IsInternalName(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), EnginePrefix)
}

// IsHiddenName reports whether name must be excluded from user-facing listings.
func IsHiddenName(name string) bool {
	return IsReservedName(name) || IsInternalName(name)
}
