package domain

import (
	"testing"

	dErrors "contactbook/pkg/domain-errors"
)

var idSeeds = []string{
	"",
	"550e8400-e29b-41d4-a716-446655440000",
	"{550e8400-e29b-41d4-a716-446655440000}",
	"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
	"00000000-0000-0000-0000-000000000000",
	"not-a-uuid",
	"../../etc/passwd",
	"550e8400-e29b-41d4-a716-446655440000\x00tail",
}

type parsedID interface {
	comparable
	String() string
	IsNil() bool
}

// checkParse holds for both id kinds: a rejection carries CodeInvalidInput,
// an accepted id is never nil and survives a trip through its canonical form.
func checkParse[T parsedID](t *testing.T, parse func(string) (T, error), input string) {
	id, err := parse(input)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			t.Fatalf("rejection of %q has wrong code: %v", input, err)
		}
		return
	}
	if id.IsNil() {
		t.Fatalf("nil id accepted from %q", input)
	}
	again, err := parse(id.String())
	if err != nil {
		t.Fatalf("canonical form %q rejected: %v", id.String(), err)
	}
	if again != id {
		t.Fatalf("canonical form of %q parsed to a different id", input)
	}
}

func FuzzParseUserID(f *testing.F) {
	for _, s := range idSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		checkParse(t, ParseUserID, input)
	})
}

func FuzzParseContactID(f *testing.F) {
	for _, s := range idSeeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		checkParse(t, ParseContactID, input)
	})
}
