package models

import "strings"

// Identity kinds that prefix a bucket key.
const (
	IdentityUser = "user"
	IdentityIP   = "ip"
)

// SanitizeKeySegment escapes ':' so a caller controlled identifier
// cannot spill into an adjacent key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// BucketKey builds "rl:<class>:<kind>:<identity>".
func BucketKey(class, kind, identity string) string {
	return "rl:" + SanitizeKeySegment(class) + ":" + kind + ":" + SanitizeKeySegment(identity)
}
