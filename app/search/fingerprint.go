package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// canonicalRequest is the normalized form a fingerprint is computed
// over. Two requests that compile to the same query produce the same
// canonical form regardless of filter or id order.
type canonicalRequest struct {
	UserId   uint               `json:"user_id"`
	Version  uint64             `json:"version"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Query    string             `json:"query"`
	Filters  []FieldFilter      `json:"filters"`
	Subjects *canonicalRelation `json:"subjects,omitempty"`
	Tags     *canonicalRelation `json:"tags,omitempty"`
	Sort     string             `json:"sort"`
}

type canonicalRelation struct {
	Mode      string         `json:"mode"`
	MatchType string         `json:"match_type"`
	Ids       []uint         `json:"ids"`
	Terms     []RelationTerm `json:"terms"`
}

// Fingerprint derives the cache key for a request. The owner and the
// catalog version are part of the key, so results never leak across
// users and every mutation invalidates wholesale.
func Fingerprint(req *SearchRequest, userId uint, version uint64) string {
	// Query and sort are normalized the same way Compile normalizes
	// them, so requests that compile identically share one key.
	c := canonicalRequest{
		UserId:   userId,
		Version:  version,
		Page:     req.page(),
		PageSize: req.pageSize(),
		Query:    strings.ToLower(strings.TrimSpace(req.Query)),
		Filters:  append([]FieldFilter(nil), req.Filters...),
		Subjects: canonicalizeRelation(req.Subjects),
		Tags:     canonicalizeRelation(req.Tags),
		Sort:     sortExpr(req.SortBy, req.SortOrder),
	}
	sort.Slice(c.Filters, func(i, j int) bool {
		if c.Filters[i].Field != c.Filters[j].Field {
			return c.Filters[i].Field < c.Filters[j].Field
		}
		return c.Filters[i].Value < c.Filters[j].Value
	})

	raw, _ := json.Marshal(c)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func canonicalizeRelation(f *RelationFilter) *canonicalRelation {
	if !f.active() {
		return nil
	}
	c := &canonicalRelation{
		Mode:      f.mode(),
		MatchType: f.matchType(),
		Ids:       append([]uint(nil), f.Ids...),
		Terms:     f.Terms,
	}
	sort.Slice(c.Ids, func(i, j int) bool { return c.Ids[i] < c.Ids[j] })
	return c
}
