package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketKey(t *testing.T) {
	assert.Equal(t, "rl:contacts.list:user:abc", BucketKey("contacts.list", IdentityUser, "abc"))
	assert.Equal(t, "rl:contacts.get:ip:__1", BucketKey("contacts.get", IdentityIP, "::1"))
}

func TestSanitizeKeySegment(t *testing.T) {
	assert.Equal(t, "user_admin", SanitizeKeySegment("user:admin"))
	assert.Equal(t, "plain", SanitizeKeySegment("plain"))
}
