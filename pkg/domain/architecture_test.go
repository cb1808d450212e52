package domain

import (
	"testing"

	"homeerp/testutil"
)

func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImport, "domain must stay free of implementation packages")
}
