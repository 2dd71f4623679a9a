// Package marketplace is the HTTP boundary of the marketplace API.
//
// It builds requests through an injected RequestFactory, sends them through
// an injected Doer, and decodes the handful of payloads the publisher needs.
// Endpoint paths are relative to the API base URL.
package marketplace

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the production marketplace API.
const DefaultBaseURL = "https://metaverse.highfidelity.com"

// API paths.
const (
	CategoriesPath = "/api/v1/marketplace/categories"
	ItemsPath      = "/api/v1/marketplace/items"
	InventoryPath  = "/api/v1/commerce/inventory"
)

// ItemPath returns the path of a single listing.
func ItemPath(id ItemID) string {
	return ItemsPath + "/" + url.PathEscape(id.PathSegment())
}

// joinURL appends path to base, avoiding doubled slashes.
func joinURL(base *url.URL, path string) string {
	return strings.TrimSuffix(base.String(), "/") + "/" + strings.TrimPrefix(path, "/")
}
