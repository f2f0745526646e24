// Package repo implements the data persistence layer for domain entities,
// backed by MongoDB. This file provides the aggregation queries behind the
// analytics endpoints.
package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DayLikes is one row of the per-day like aggregation. Like dates are stored
// truncated to midnight UTC, so grouping on them buckets whole days.
type DayLikes struct {
	Date  time.Time `json:"date"  bson:"_id"`
	Count int64     `json:"count" bson:"count"`
}

// AnalyticsRepo runs aggregation pipelines over the posts collection.
type AnalyticsRepo struct {
	coll *mongo.Collection
}

// NewAnalyticsRepo constructs an AnalyticsRepo over the manager's posts
// collection.
func NewAnalyticsRepo(m *Manager) *AnalyticsRepo {
	return &AnalyticsRepo{coll: m.Posts()}
}

// LikesPerDay unwinds embedded likes and groups them by like date, optionally
// restricted to the inclusive [from, to] day range. Rows come back sorted by
// date ascending.
func (r *AnalyticsRepo) LikesPerDay(ctx context.Context, from, to *time.Time) ([]DayLikes, error) {
	pipeline := []bson.M{
		{"$unwind": "$likes"},
		{"$group": bson.M{"_id": "$likes.date", "count": bson.M{"$sum": 1}}},
	}
	if match := dateMatch(from, to); len(match) > 0 {
		pipeline = append(pipeline, bson.M{"$match": bson.M{"_id": match}})
	}
	pipeline = append(pipeline, bson.M{"$sort": bson.M{"_id": 1}})

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate likes: %w", err)
	}
	defer cur.Close(ctx)

	out := []DayLikes{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode likes aggregation: %w", err)
	}
	return out, nil
}

// dateMatch builds the $gte/$lte bounds for the grouped like date.
func dateMatch(from, to *time.Time) bson.M {
	match := bson.M{}
	if from != nil {
		match["$gte"] = from.UTC()
	}
	if to != nil {
		match["$lte"] = to.UTC()
	}
	return match
}
