package marketplace

import (
	"encoding/json"
	"fmt"
)

// DefaultCategoryName is the category avatar listings are filed under.
const DefaultCategoryName = "Avatars"

// Category is one entry of the category list.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// categoryItems extracts data.items from a category list response.
// The body must be a JSON object whose data.items member is an array.
func categoryItems(body []byte) ([]any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: categories: %w", ErrMalformedResponse, err)
	}

	root, _ := doc.(map[string]any)
	data, _ := root["data"].(map[string]any)
	items, ok := data["items"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: categories: data.items is not an array", ErrMalformedResponse)
	}
	return items, nil
}

// ResolveCategoryID scans the category list in server order and returns the
// id of the first entry whose name equals name exactly.
//
// Entries are validated only up to the match: a non-object entry before the
// match, or a non-numeric id on the matching entry, is ErrMalformedResponse.
// No match is ErrCategoryNotFound.
func ResolveCategoryID(body []byte, name string) (int, error) {
	items, err := categoryItems(body)
	if err != nil {
		return 0, err
	}

	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("%w: categories: item %d is not an object", ErrMalformedResponse, i)
		}

		itemName, _ := obj["name"].(string)
		if itemName != name {
			continue
		}

		id, ok := obj["id"].(float64)
		if !ok {
			return 0, fmt.Errorf("%w: categories: id of %q is not a number", ErrMalformedResponse, name)
		}
		return int(id), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
}

// DecodeCategories returns every entry of the category list in server order.
// Unlike ResolveCategoryID it requires every entry to be well formed.
func DecodeCategories(body []byte) ([]Category, error) {
	items, err := categoryItems(body)
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: categories: item %d is not an object", ErrMalformedResponse, i)
		}
		id, ok := obj["id"].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: categories: item %d id is not a number", ErrMalformedResponse, i)
		}
		name, _ := obj["name"].(string)
		categories = append(categories, Category{ID: int(id), Name: name})
	}
	return categories, nil
}
