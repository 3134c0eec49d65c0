package query

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultPageSize is used when a page is requested without a page size.
	DefaultPageSize = 20
	// MaxPageSize caps the page size; larger requests are clamped.
	MaxPageSize = 100
)

// ErrInvalidQuery is returned when query options cannot be compiled.
var ErrInvalidQuery = errors.New("invalid query")

// Direction is the sort direction of an Order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Pagination selects a window of results. Page 0 is the first page.
type Pagination struct {
	Page     int
	PageSize int
}

// Limit returns the number of rows a page holds.
func (p Pagination) Limit() uint64 {
	return uint64(p.PageSize)
}

// Offset returns the number of rows skipped before the page starts.
func (p Pagination) Offset() uint64 {
	return uint64(p.PageSize) * uint64(p.Page)
}

// Order is a single (field, direction) pair. Field is the public field name,
// e.g. "name" or "categoryId", and must be sortable for the entity kind.
type Order struct {
	Field     string
	Direction Direction
}

// Options are the list parameters shared by all entity kinds.
//
// A nil Order means the store's default order, which is not deterministic.
// A nil IDs slice means no id filter; a non-nil empty slice matches nothing.
type Options struct {
	Pagination *Pagination
	Order      *Order
	Search     string
	IDs        []string
}

// Validate checks pagination bounds and direction. Page sizes above
// MaxPageSize are clamped rather than rejected; pages whose offset would
// overflow are rejected.
func (o *Options) Validate() error {
	if p := o.Pagination; p != nil {
		if p.PageSize <= 0 {
			return fmt.Errorf("%w: page size must be positive, got %d", ErrInvalidQuery, p.PageSize)
		}
		if p.Page < 0 {
			return fmt.Errorf("%w: page must not be negative, got %d", ErrInvalidQuery, p.Page)
		}
		if p.PageSize > MaxPageSize {
			p.PageSize = MaxPageSize
		}
		if p.Page > math.MaxInt/p.PageSize {
			return fmt.Errorf("%w: page %d is out of range", ErrInvalidQuery, p.Page)
		}
	}
	if o.Order != nil {
		switch o.Order.Direction {
		case Asc, Desc:
		case "":
			o.Order.Direction = Asc
		default:
			return fmt.Errorf("%w: unknown order direction %q", ErrInvalidQuery, o.Order.Direction)
		}
	}
	return nil
}
