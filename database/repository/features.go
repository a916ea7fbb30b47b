package repository

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

var operatorKey = regexp.MustCompile(`^(\w+)\[(gte|gt|lte|lt)\]$`)

// ListOptions captures the query features of a collection listing:
// filtering, sorting, projection and pagination.
type ListOptions struct {
	Filter bson.M
	Sort   bson.D
	Fields bson.M
	Page   int64
	Limit  int64
}

func NewListOptions() ListOptions {
	return ListOptions{Filter: bson.M{}, Page: 1, Limit: defaultLimit}
}

// ParseListOptions builds query options from URL parameters: field
// equality (?difficulty=easy), comparison operators (?price[lt]=1000),
// sorting (?sort=-price,name), projection (?fields=name,price) and
// pagination (?page=2&limit=10).
func ParseListOptions(values url.Values) ListOptions {
	q := NewListOptions()

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		raw := vals[0]

		switch key {
		case "page":
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
				q.Page = n
			}
		case "limit":
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
				if n > maxLimit {
					n = maxLimit
				}
				q.Limit = n
			}
		case "sort":
			for _, field := range strings.Split(raw, ",") {
				field = strings.TrimSpace(field)
				if field == "" {
					continue
				}
				order := 1
				if strings.HasPrefix(field, "-") {
					order = -1
					field = field[1:]
				}
				q.Sort = append(q.Sort, bson.E{Key: field, Value: order})
			}
		case "fields":
			q.Fields = bson.M{}
			for _, field := range strings.Split(raw, ",") {
				field = strings.TrimSpace(field)
				if field != "" {
					q.Fields[field] = 1
				}
			}
		default:
			if m := operatorKey.FindStringSubmatch(key); m != nil {
				field, op := m[1], "$"+m[2]
				cond, ok := q.Filter[field].(bson.M)
				if !ok {
					cond = bson.M{}
					q.Filter[field] = cond
				}
				cond[op] = coerce(raw)
			} else {
				q.Filter[key] = coerce(raw)
			}
		}
	}
	return q
}

// coerce interprets numeric and boolean literals so that comparison
// operators work against numeric fields.
func coerce(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
