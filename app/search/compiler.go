package search

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"bookstack/app/models"
)

// Columns the free-text term is matched against, besides the paragraph
// document.
var freeTextColumns = []string{
	"title", "information_rating", "remark", "footnote",
	"keywords", "summary", "conclusion", "page_no", "paragraph_no",
}

// Sortable columns. Anything else silently falls back to sr_no.
var sortColumns = map[string]bool{
	"sr_no":              true,
	"title":              true,
	"page_no":            true,
	"paragraph_no":       true,
	"information_rating": true,
	"created_at":         true,
	"updated_at":         true,
}

// CompiledQuery is the executable form of a SearchRequest. Apply adds
// the SQL conditions; PostFilter, when non-nil, re-checks each
// candidate row in memory and pagination moves to the filtered set.
type CompiledQuery struct {
	conds      []condition
	PostFilter func(*models.Transaction) bool
	Sort       string
	Page       int
	PageSize   int
}

type condition struct {
	expr string
	args []any
}

// Compile turns a validated request into SQL conditions plus an
// optional in-memory post filter. Ownership is always part of the
// compiled query, never optional.
func Compile(req *SearchRequest, userId uint) *CompiledQuery {
	cq := &CompiledQuery{
		Page:     req.page(),
		PageSize: req.pageSize(),
		Sort:     sortExpr(req.SortBy, req.SortOrder),
	}
	cq.where("transactions.user_id = ?", userId)

	var postChecks []func(*models.Transaction) bool

	for _, f := range req.Filters {
		switch f.Field {
		case FieldInformationRating:
			compileRating(cq, f)
		case FieldParagraph:
			compileParagraph(cq, f, &postChecks)
		default:
			compileWordSearch(cq, f, &postChecks)
		}
	}

	if q := strings.TrimSpace(req.Query); q != "" {
		compileFreeText(cq, q, &postChecks)
	}

	if req.Subjects.active() {
		compileRelation(cq, req.Subjects, "transaction_subjects", "subject_id", "subjects")
	}
	if req.Tags.active() {
		compileRelation(cq, req.Tags, "transaction_tags", "tag_id", "tags")
	}

	if len(postChecks) > 0 {
		cq.PostFilter = func(tx *models.Transaction) bool {
			for _, check := range postChecks {
				if !check(tx) {
					return false
				}
			}
			return true
		}
	}

	return cq
}

// Apply adds the compiled conditions to a gorm query.
func (cq *CompiledQuery) Apply(tx *gorm.DB) *gorm.DB {
	for _, c := range cq.conds {
		tx = tx.Where(c.expr, c.args...)
	}
	return tx
}

func (cq *CompiledQuery) where(expr string, args ...any) {
	cq.conds = append(cq.conds, condition{expr: expr, args: args})
}

func sortExpr(sortBy, sortOrder string) string {
	if !sortColumns[sortBy] {
		sortBy = "sr_no"
	}
	if sortOrder != "desc" {
		sortOrder = "asc"
	}
	return fmt.Sprintf("transactions.%s %s", sortBy, sortOrder)
}

// compileWordSearch splits the value on whitespace and requires every
// word as a substring of the column. SQL LIKE is case-insensitive on
// sqlite and the default MySQL collations, so the case-sensitive
// variant keeps the LIKE as a prefilter and confirms each candidate in
// memory.
func compileWordSearch(cq *CompiledQuery, f FieldFilter, postChecks *[]func(*models.Transaction) bool) {
	words := strings.Fields(f.Value)
	for _, word := range words {
		if f.CaseSensitive {
			cq.where(fmt.Sprintf("transactions.%s LIKE ?", f.Field), "%"+word+"%")
		} else {
			cq.where(fmt.Sprintf("LOWER(transactions.%s) LIKE ?", f.Field), "%"+strings.ToLower(word)+"%")
		}
	}
	if f.CaseSensitive && len(words) > 0 {
		field := f.Field
		*postChecks = append(*postChecks, func(tx *models.Transaction) bool {
			text := wordSearchText(tx, field)
			for _, word := range words {
				if !strings.Contains(text, word) {
					return false
				}
			}
			return true
		})
	}
}

func wordSearchText(tx *models.Transaction, field string) string {
	switch field {
	case FieldTitle:
		return tx.Title
	case FieldRemark:
		return tx.Remark
	case FieldFootnote:
		return tx.Footnote
	}
	return ""
}

// compileRating matches the rating exactly; an empty or literal "null"
// value selects unrated rows.
func compileRating(cq *CompiledQuery, f FieldFilter) {
	v := strings.TrimSpace(f.Value)
	if v == "" || strings.EqualFold(v, "null") {
		cq.where("transactions.information_rating IS NULL")
		return
	}
	cq.where("transactions.information_rating = ?", v)
}

// compileParagraph prefilters against the serialized JSON column and
// confirms each candidate against the decoded per-language values. A
// word matches a row when any single language value contains it, and
// all words must match.
func compileParagraph(cq *CompiledQuery, f FieldFilter, postChecks *[]func(*models.Transaction) bool) {
	words := strings.Fields(f.Value)
	if len(words) == 0 {
		return
	}
	for _, word := range words {
		if f.CaseSensitive {
			cq.where("transactions.paragraph LIKE ?", "%"+word+"%")
		} else {
			cq.where("LOWER(transactions.paragraph) LIKE ?", "%"+strings.ToLower(word)+"%")
		}
	}
	caseSensitive := f.CaseSensitive
	*postChecks = append(*postChecks, func(tx *models.Transaction) bool {
		for _, word := range words {
			if !paragraphHasWord(tx.Paragraph, word, caseSensitive) {
				return false
			}
		}
		return true
	})
}

func paragraphHasWord(p models.ParagraphText, word string, caseSensitive bool) bool {
	if !caseSensitive {
		word = strings.ToLower(word)
	}
	for _, text := range p {
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// compileFreeText matches the term as a case-insensitive substring of
// any text column or any paragraph language value. It is additive with
// the field filters above.
func compileFreeText(cq *CompiledQuery, term string, postChecks *[]func(*models.Transaction) bool) {
	lowered := strings.ToLower(term)
	pattern := "%" + lowered + "%"

	exprs := make([]string, 0, len(freeTextColumns)+1)
	args := make([]any, 0, len(freeTextColumns)+1)
	for _, col := range freeTextColumns {
		exprs = append(exprs, fmt.Sprintf("LOWER(transactions.%s) LIKE ?", col))
		args = append(args, pattern)
	}
	exprs = append(exprs, "LOWER(transactions.paragraph) LIKE ?")
	args = append(args, pattern)
	cq.where("("+strings.Join(exprs, " OR ")+")", args...)

	// The paragraph clause above can match JSON keys; re-check rows
	// whose only match came from the paragraph column.
	*postChecks = append(*postChecks, func(tx *models.Transaction) bool {
		fields := []string{
			tx.Title, tx.Remark, tx.Footnote, tx.Keywords,
			tx.Summary, tx.Conclusion, tx.PageNo, tx.ParagraphNo,
		}
		if tx.InformationRating != nil {
			fields = append(fields, *tx.InformationRating)
		}
		for _, text := range fields {
			if strings.Contains(strings.ToLower(text), lowered) {
				return true
			}
		}
		return paragraphHasWord(tx.Paragraph, lowered, false)
	})
}

// compileRelation builds EXISTS subqueries against a join table. Exact
// mode matches linked ids; text mode matches linked names with the
// requested operator per term.
func compileRelation(cq *CompiledQuery, f *RelationFilter, joinTable, joinColumn, targetTable string) {
	if f.mode() == ModeExact {
		if f.matchType() == MatchOr {
			cq.where(fmt.Sprintf(
				"EXISTS (SELECT 1 FROM %s jt WHERE jt.transaction_id = transactions.id AND jt.%s IN ?)",
				joinTable, joinColumn), f.Ids)
			return
		}
		for _, id := range f.Ids {
			cq.where(fmt.Sprintf(
				"EXISTS (SELECT 1 FROM %s jt WHERE jt.transaction_id = transactions.id AND jt.%s = ?)",
				joinTable, joinColumn), id)
		}
		return
	}

	exprs := make([]string, 0, len(f.Terms))
	args := make([]any, 0, len(f.Terms))
	for _, term := range f.Terms {
		nameCond, nameArgs := nameCondition(term)
		exprs = append(exprs, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s jt JOIN %s t ON t.id = jt.%s WHERE jt.transaction_id = transactions.id AND %s)",
			joinTable, targetTable, joinColumn, nameCond))
		args = append(args, nameArgs...)
	}
	joiner := " AND "
	if f.matchType() == MatchOr {
		joiner = " OR "
	}
	cq.where("("+strings.Join(exprs, joiner)+")", args...)
}

func nameCondition(term RelationTerm) (string, []any) {
	v := strings.ToLower(term.Value)
	switch term.Operator {
	case OpStartsWith:
		return "LOWER(t.name) LIKE ?", []any{v + "%"}
	case OpEndsWith:
		return "LOWER(t.name) LIKE ?", []any{"%" + v}
	case OpEquals:
		return "LOWER(t.name) = ?", []any{v}
	case OpWholeWord:
		words := strings.Fields(v)
		if len(words) == 0 {
			return "LOWER(t.name) = ?", []any{v}
		}
		parts := make([]string, len(words))
		args := make([]any, len(words))
		for i, w := range words {
			parts[i] = "LOWER(t.name) LIKE ?"
			args[i] = "%" + w + "%"
		}
		return "(" + strings.Join(parts, " AND ") + ")", args
	default: // contains
		return "LOWER(t.name) LIKE ?", []any{"%" + v + "%"}
	}
}
