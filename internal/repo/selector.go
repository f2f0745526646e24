// Generic list-query selector.
//
// Selector translates pagination, sort, and free-text search parameters into
// MongoDB queries for any document type, returning a page of results plus a
// total count. It is the single list mechanism shared by the user and post
// collections.
package repo

import (
	"context"
	"reflect"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default page bounds applied when the caller supplies out-of-range values.
const (
	defaultSkip  = 0
	defaultLimit = 10
)

// ListParams carries the caller-facing list query knobs.
//
//   - Query: optional free text, matched case-insensitively against the
//     selector's lookup fields.
//   - Skip: number of documents to skip; negative values reset to 0.
//   - Limit: page size; values <= 0 reset to 10.
//   - Sort: optional BSON field name, with a leading '-' for descending
//     order. Names that do not exist on the target document type silently
//     disable sorting.
type ListParams struct {
	Query string
	Skip  int64
	Limit int64
	Sort  string
}

// normalized returns a copy with skip/limit clamped to their defaults.
func (p ListParams) normalized() ListParams {
	if p.Skip < 0 {
		p.Skip = defaultSkip
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	return p
}

// listCollection is the slice of *mongo.Collection the Selector touches.
// Narrowed to an interface so List's count/find orchestration is testable
// without a live server.
type listCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Selector builds filtered, paginated, sorted queries over a collection of T.
//
// The set of sortable fields is derived from T's bson struct tags at
// construction time; lookup fields configure which of them participate in
// free-text search.
type Selector[T any] struct {
	coll         listCollection
	lookupFields []string
	fields       map[string]struct{}
}

// NewSelector constructs a Selector over coll. lookupFields name the bson
// fields OR-matched by free-text queries.
func NewSelector[T any](coll *mongo.Collection, lookupFields ...string) *Selector[T] {
	var zero T
	return &Selector[T]{
		coll:         coll,
		lookupFields: lookupFields,
		fields:       bsonFieldSet(reflect.TypeOf(zero)),
	}
}

// List runs the query and returns one page of documents plus the total count.
//
// The count is taken over the structured filter alone, before the free-text
// condition is layered on, so it can overstate the page universe when Query
// is set. That mirrors the long-standing list contract and callers depend on
// it; do not fold the text condition into the count.
func (s *Selector[T]) List(ctx context.Context, filter bson.M, params ListParams) ([]T, int64, error) {
	params = params.normalized()
	if filter == nil {
		filter = bson.M{}
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if q := strings.TrimSpace(params.Query); q != "" && len(s.lookupFields) > 0 {
		filter = s.withTextSearch(filter, q)
	}

	opts := options.Find().SetSkip(params.Skip).SetLimit(params.Limit)
	if sort, ok := s.sortSpec(params.Sort); ok {
		opts.SetSort(sort)
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// withTextSearch ORs a case-insensitive substring condition across the lookup
// fields, preserving the structured filter.
func (s *Selector[T]) withTextSearch(filter bson.M, q string) bson.M {
	rx := primitiveRegex(q)
	or := make([]bson.M, 0, len(s.lookupFields))
	for _, f := range s.lookupFields {
		or = append(or, bson.M{f: rx})
	}
	combined := bson.M{"$or": or}
	if len(filter) == 0 {
		return combined
	}
	return bson.M{"$and": []bson.M{filter, combined}}
}

// sortSpec parses the sort string. A leading '-' means descending. Unknown
// field names report ok=false so the caller skips sorting without erroring.
func (s *Selector[T]) sortSpec(sort string) (bson.D, bool) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return nil, false
	}
	dir := 1
	if strings.HasPrefix(sort, "-") {
		dir = -1
		sort = sort[1:]
	}
	if _, ok := s.fields[sort]; !ok {
		return nil, false
	}
	return bson.D{{Key: sort, Value: dir}}, true
}

// primitiveRegex builds a case-insensitive, metacharacter-safe regex filter.
func primitiveRegex(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
}

// bsonFieldSet collects the bson field names of a struct type, following the
// first comma-separated segment of each tag. Untagged fields fall back to the
// lowercased Go name, matching the driver's default.
func bsonFieldSet(t reflect.Type) map[string]struct{} {
	out := map[string]struct{}{}
	if t == nil || t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		name := strings.Split(f.Tag.Get("bson"), ",")[0]
		switch name {
		case "-":
			continue
		case "":
			name = strings.ToLower(f.Name)
		}
		out[name] = struct{}{}
	}
	return out
}
