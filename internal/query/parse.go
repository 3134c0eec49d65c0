package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FromValues reads list parameters from a URL query:
// search, page, pageSize, orderBy, order and ids (comma separated or repeated).
func FromValues(v url.Values) (Options, error) {
	var opts Options
	opts.Search = v.Get("search")

	pageStr, sizeStr := v.Get("page"), v.Get("pageSize")
	if pageStr != "" || sizeStr != "" {
		p := Pagination{PageSize: DefaultPageSize}
		var err error
		if pageStr != "" {
			if p.Page, err = strconv.Atoi(pageStr); err != nil {
				return Options{}, fmt.Errorf("%w: page %q is not a number", ErrInvalidQuery, pageStr)
			}
		}
		if sizeStr != "" {
			if p.PageSize, err = strconv.Atoi(sizeStr); err != nil {
				return Options{}, fmt.Errorf("%w: pageSize %q is not a number", ErrInvalidQuery, sizeStr)
			}
		}
		opts.Pagination = &p
	}

	if field := v.Get("orderBy"); field != "" {
		opts.Order = &Order{
			Field:     field,
			Direction: Direction(strings.ToLower(v.Get("order"))),
		}
	}

	opts.IDs = List(v, "ids")

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// List collects a multi-valued parameter given either repeated or comma
// separated. It returns nil when the parameter is absent.
func List(v url.Values, key string) []string {
	raw, ok := v[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
