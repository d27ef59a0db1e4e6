package dto

import (
	"net/url"
	"strconv"
)

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope; next/previous are reqURL with the page parameter swapped.
func NewPage[T any](results []T, total int64, page, pageSize int, reqURL *url.URL) Page[T] {
	if results == nil {
		results = []T{}
	}
	p := Page[T]{Count: total, Results: results}
	if reqURL == nil {
		return p
	}
	if int64(page)*int64(pageSize) < total {
		p.Next = pageLink(reqURL, page+1, pageSize)
	}
	if page > 1 {
		p.Previous = pageLink(reqURL, page-1, pageSize)
	}
	return p
}

func pageLink(reqURL *url.URL, page, pageSize int) *string {
	u := *reqURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
