// Package query turns the opaque key-value parameters of a list request into a
// backend-neutral filter/sort/paginate/fields description. The reserved keys
// are "sort", "page", "limit" and "fields"; every other key is an equality
// filter on the stored field of the same name.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	defaultSort  = "-createdAt"
)

// SortField is one sort key, descending when the raw key carried a "-" prefix.
type SortField struct {
	Key  string
	Desc bool
}

// Options is a parsed list request.
type Options struct {
	Filter map[string]string
	Sort   []SortField
	Skip   int64
	Limit  int64
	Fields []string
}

// Parse interprets raw query parameters. Page and limit must be positive
// integers when present; anything else is a caller error.
func Parse(params map[string]string) (Options, error) {
	opts := Options{
		Filter: make(map[string]string),
		Limit:  DefaultLimit,
	}

	page := int64(1)
	for key, value := range params {
		switch key {
		case "sort":
			opts.Sort = parseSort(value)
		case "page":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 1 {
				return Options{}, fmt.Errorf("invalid page %q", value)
			}
			page = n
		case "limit":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 1 {
				return Options{}, fmt.Errorf("invalid limit %q", value)
			}
			opts.Limit = n
		case "fields":
			for _, f := range strings.Split(value, ",") {
				if f = strings.TrimSpace(f); f != "" {
					opts.Fields = append(opts.Fields, f)
				}
			}
		default:
			opts.Filter[key] = value
		}
	}

	if len(opts.Sort) == 0 {
		opts.Sort = parseSort(defaultSort)
	}
	opts.Skip = (page - 1) * opts.Limit

	return opts, nil
}

func parseSort(raw string) []SortField {
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			fields = append(fields, SortField{Key: part[1:], Desc: true})
		} else {
			fields = append(fields, SortField{Key: part})
		}
	}
	return fields
}
