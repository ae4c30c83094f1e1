package utils

import (
	"net/url"
	"strconv"
	"strings"

	"service-crm/pkg/types"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParseFilter разбирает параметры вида
// ?search=...&filter[status]=a,b&sort[created_at]=desc&limit=10&page=2&withPagination=true
func ParseFilter(query url.Values) types.Filter {
	filter := types.Filter{
		Search: strings.TrimSpace(query.Get("search")),
		Sort:   make(map[string]string),
		Filter: make(map[string]interface{}),
		Limit:  DefaultLimit,
		Page:   1,
	}

	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]"):
			filter.Filter[key[7:len(key)-1]] = values[0]
		case strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]"):
			filter.Sort[key[5:len(key)-1]] = values[0]
		}
	}

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		filter.Limit = min(l, MaxLimit)
	}
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	filter.Offset = (filter.Page - 1) * filter.Limit
	if o, err := strconv.Atoi(query.Get("offset")); err == nil && o >= 0 && query.Get("page") == "" {
		filter.Offset = o
		filter.Page = o/filter.Limit + 1
	}

	filter.WithPagination = true
	if wp := query.Get("withPagination"); wp != "" {
		filter.WithPagination, _ = strconv.ParseBool(wp)
	}
	return filter
}
