package marketplace

import (
	"encoding/base64"
	"encoding/json"
)

// Listing is the marketplace_item document submitted on create and update.
type Listing struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RootFileKey string `json:"root_file_key"`
	CategoryIDs []int  `json:"category_ids"`
	License     int    `json:"license"`
	// Files is the archive blob, base64 encoded.
	Files string `json:"files"`
}

type listingEnvelope struct {
	Item Listing `json:"marketplace_item"`
}

// NewListing builds a listing carrying archive as its payload.
func NewListing(title, description, rootFileKey string, categoryIDs []int, license int, archive []byte) Listing {
	return Listing{
		Title:       title,
		Description: description,
		RootFileKey: rootFileKey,
		CategoryIDs: categoryIDs,
		License:     license,
		Files:       base64.StdEncoding.EncodeToString(archive),
	}
}

// MarshalBody returns the request body: the listing wrapped in marketplace_item.
func (l Listing) MarshalBody() ([]byte, error) {
	if l.CategoryIDs == nil {
		l.CategoryIDs = []int{}
	}
	return json.Marshal(listingEnvelope{Item: l})
}
