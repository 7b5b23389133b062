package dadata

import (
	"errors"
	"fmt"
	"strings"
)

const defaultCount = 20

var (
	ErrEmptyQuery        = errors.New("empty search query")
	ErrInvalidStatus     = errors.New("invalid party status")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidCount      = errors.New("invalid result count")
)

// Query describes one suggestion lookup. Build it with NewQuery or
// NewTypeQuery; the zero value is not a valid query.
type Query struct {
	Text       string
	Status     Status
	EntityType EntityType
	Count      int
}

type QueryOption func(*Query)

func WithCount(count int) QueryOption {
	return func(q *Query) {
		q.Count = count
	}
}

// ParseStatus accepts only the exact upper-case status names.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q, allowed: %v", ErrInvalidStatus, s, statuses)
	}

	return status, nil
}

func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q, allowed: %v", ErrInvalidEntityType, s, entityTypes)
	}

	return t, nil
}

// NewQuery builds a status-filtered query.
func NewQuery(text, status string, opts ...QueryOption) (*Query, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	return newQuery(&Query{Text: text, Status: st}, opts)
}

// NewTypeQuery builds a query restricted by entity type instead of status.
func NewTypeQuery(text, entityType string, opts ...QueryOption) (*Query, error) {
	t, err := ParseEntityType(entityType)
	if err != nil {
		return nil, err
	}

	return newQuery(&Query{Text: text, EntityType: t}, opts)
}

func newQuery(q *Query, opts []QueryOption) (*Query, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}

	q.Count = defaultCount

	for _, opt := range opts {
		opt(q)
	}

	if q.Count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, q.Count)
	}

	return q, nil
}

// Payload returns the request body for the suggestion endpoint.
func (q *Query) Payload() PartyRequest {
	req := PartyRequest{
		Query: q.Text,
		Count: q.Count,
		Type:  q.EntityType,
	}

	if q.Status != "" {
		req.Filters = []StatusFilter{{Status: q.Status}}
	}

	return req
}
