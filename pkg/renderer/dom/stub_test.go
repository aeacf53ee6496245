//go:build !js || !wasm

package dom

import (
	"errors"
	"testing"

	"github.com/recera/famtree/pkg/search"
)

func TestStubHostFails(t *testing.T) {
	_, err := search.New(NewHost(), "#FamilyChart", nil, nil)
	if !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v, want ErrNoDocument", err)
	}
}
