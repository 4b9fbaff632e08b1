package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs and prefixed ledger references.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// NewReference generates a prefixed reference, e.g. BKASH-01H2X3....
// ULIDs sort by creation time, so references do too.
func (g *ULIDGenerator) NewReference(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}
