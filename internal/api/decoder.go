package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	// VendorContentType prefixes every genuine service response.
	VendorContentType = "application/vnd.mixradio"
	jsonContentType   = "application/json"
)

// Converter maps one JSON node to T. Returning false drops the node.
type Converter[T any] func(raw json.RawMessage) (T, bool)

// Decodable reports whether a raw response should be handed to the decoder.
func Decodable(statusCode int, contentType string) bool {
	switch statusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return false
	}
	return ValidContentType(contentType)
}

// ValidContentType performs the case-insensitive prefix check on the vendor and JSON types.
func ValidContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, VendorContentType) || strings.HasPrefix(ct, jsonContentType)
}

// DecodeList reads the array under field and the optional sibling paging block.
func DecodeList[T any](body []byte, field string, convert Converter[T]) (Page[T], error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return Page[T]{}, fmt.Errorf("failed to decode list payload: %w", err)
	}

	var page Page[T]
	if raw, ok := root[field]; ok && !isNull(raw) {
		var nodes []json.RawMessage
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return Page[T]{}, fmt.Errorf("failed to decode %q: %w", field, err)
		}
		page.Items = make([]T, 0, len(nodes))
		for _, node := range nodes {
			if item, ok := convert(node); ok {
				page.Items = append(page.Items, item)
			}
		}
	}

	if raw, ok := root["paging"]; ok && !isNull(raw) {
		var paging Paging
		if err := json.Unmarshal(raw, &paging); err != nil {
			return Page[T]{}, fmt.Errorf("failed to decode paging: %w", err)
		}
		page.Paging = &paging
	}

	return page, nil
}

// DecodeItem applies convert to the root object.
func DecodeItem[T any](body []byte, convert Converter[T]) (T, error) {
	var zero T
	if !json.Valid(body) {
		return zero, fmt.Errorf("failed to decode item payload: invalid JSON")
	}
	item, ok := convert(body)
	if !ok {
		return zero, fmt.Errorf("failed to decode item payload: unrecognised object")
	}
	return item, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
