//go:build !js || !wasm

// Package dom builds browser DOM from VNode trees and hosts the search
// widget on a real page. Outside js/wasm builds it only reports that no
// document is available.
package dom

import (
	"errors"

	"github.com/recera/famtree/pkg/search"
)

// ErrNoDocument is returned outside the browser.
var ErrNoDocument = errors.New("dom: only available in js/wasm builds")

// Host is the non-browser stand-in.
type Host struct{}

// NewHost returns a host whose Mount always fails.
func NewHost() *Host { return &Host{} }

// Mount implements search.Host.
func (h *Host) Mount(selector string) (search.Surface, error) {
	return nil, ErrNoDocument
}
