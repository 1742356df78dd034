package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

const (
	indexName = "prefabs_v1"
	keyPrefix = "prefab:"
)

type redisIndex struct {
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedisIndex declares the index schema (idempotent) and returns the
// gateway. Field weights mirror the ranking contract: name heaviest, then
// creator name, description, body content.
func NewRedisIndex(rdb *goredis.Client, baseLog *logger.Logger) (Index, error) {
	idx := &redisIndex{rdb: rdb, log: baseLog.With("gateway", "SearchIndex")}
	if err := idx.ensureIndex(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

func (s *redisIndex) ensureIndex(ctx context.Context) error {
	err := s.rdb.FTCreate(ctx, indexName,
		&goredis.FTCreateOptions{
			OnHash: true,
			Prefix: []interface{}{keyPrefix},
		},
		&goredis.FieldSchema{FieldName: "name", FieldType: goredis.SearchFieldTypeText, Weight: 4},
		&goredis.FieldSchema{FieldName: "creator_name", FieldType: goredis.SearchFieldTypeText, Weight: 3},
		&goredis.FieldSchema{FieldName: "description", FieldType: goredis.SearchFieldTypeText, Weight: 2},
		&goredis.FieldSchema{FieldName: "content", FieldType: goredis.SearchFieldTypeText, Weight: 1},
		&goredis.FieldSchema{FieldName: "use_cases", FieldType: goredis.SearchFieldTypeTag, Separator: ","},
		&goredis.FieldSchema{FieldName: "categories", FieldType: goredis.SearchFieldTypeTag, Separator: ","},
		&goredis.FieldSchema{FieldName: "tags", FieldType: goredis.SearchFieldTypeTag, Separator: ","},
		&goredis.FieldSchema{FieldName: "licence_type", FieldType: goredis.SearchFieldTypeTag},
		&goredis.FieldSchema{FieldName: "is_free", FieldType: goredis.SearchFieldTypeTag},
	).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("search: create index: %w", err)
	}
	return nil
}

func (s *redisIndex) Upsert(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("search: upsert: missing document id")
	}
	fields := map[string]interface{}{
		"id":           doc.ID,
		"name":         doc.Name,
		"description":  doc.Description,
		"content":      doc.Content,
		"use_cases":    strings.Join(doc.UseCases, ","),
		"categories":   strings.Join(doc.Categories, ","),
		"tags":         strings.Join(doc.Tags, ","),
		"licence_type": doc.LicenceType,
		"is_free":      strconv.FormatBool(doc.IsFree),
		"creator_id":   doc.CreatorID,
		"creator_name": doc.CreatorName,
		"created_at":   doc.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	// Del before HSet: a shorter document must not inherit stale fields.
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, keyPrefix+doc.ID)
	pipe.HSet(ctx, keyPrefix+doc.ID, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("search: upsert %s: %w", doc.ID, err)
	}
	return nil
}

func (s *redisIndex) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("search: delete: missing document id")
	}
	// DEL of an absent key is a no-op, which is exactly the contract.
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("search: delete %s: %w", id, err)
	}
	return nil
}

func (s *redisIndex) Search(ctx context.Context, q Query) (*Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	res, err := s.rdb.FTSearchWithArgs(ctx, indexName, buildQuery(q), &goredis.FTSearchOptions{
		WithScores:  true,
		LimitOffset: offset,
		Limit:       limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}

	out := &Result{Total: int64(res.Total)}
	for _, d := range res.Docs {
		hit := Hit{Document: docFromFields(d.Fields)}
		if d.Score != nil {
			hit.Score = *d.Score
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery renders the term plus conjunctive tag filters, e.g.
// `hands @use_cases:{Avatars|Osc} @is_free:{true}`.
func buildQuery(q Query) string {
	var b strings.Builder
	text := escapeText(strings.TrimSpace(q.Text))
	if text == "" {
		b.WriteString("*")
	} else {
		b.WriteString(text)
	}
	writeTagFilter(&b, "use_cases", q.UseCases)
	writeTagFilter(&b, "categories", q.Categories)
	if q.IsFree != nil {
		writeTagFilter(&b, "is_free", []string{strconv.FormatBool(*q.IsFree)})
	}
	if q.LicenceType != "" {
		writeTagFilter(&b, "licence_type", []string{q.LicenceType})
	}
	return b.String()
}

func writeTagFilter(b *strings.Builder, field string, values []string) {
	if len(values) == 0 {
		return
	}
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		escaped = append(escaped, escapeTag(v))
	}
	if len(escaped) == 0 {
		return
	}
	fmt.Fprintf(b, " @%s:{%s}", field, strings.Join(escaped, "|"))
}

// escapeText neutralizes query syntax in the free-text term while keeping
// spaces as token separators, so punctuation a user types ("mirror (toggle",
// "c@t") searches as plain text instead of failing the whole query.
func escapeText(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeTag backslash-escapes everything RediSearch treats as syntax inside
// a tag value ("3D Models" -> "3D\ Models").
func escapeTag(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

func docFromFields(fields map[string]string) Document {
	doc := Document{
		ID:          fields["id"],
		Name:        fields["name"],
		Description: fields["description"],
		Content:     fields["content"],
		UseCases:    splitTags(fields["use_cases"]),
		Categories:  splitTags(fields["categories"]),
		Tags:        splitTags(fields["tags"]),
		LicenceType: fields["licence_type"],
		CreatorID:   fields["creator_id"],
		CreatorName: fields["creator_name"],
	}
	doc.IsFree, _ = strconv.ParseBool(fields["is_free"])
	if ts, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil {
		doc.CreatedAt = ts
	}
	return doc
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
