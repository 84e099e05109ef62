package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Operator is a SQL comparison operator applied through Condition.
type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryOptionFunc func(*gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Condition describes a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a WHERE clause built from the condition.
func ApplyOperator(cond Condition) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if cond.Field == "" || cond.Operator == "" {
			return db
		}
		return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
	})
}

// QuerySortBy constrains sorting to an allow-listed set of columns.
type QuerySortBy struct {
	Field string
	Desc  bool
	Allow map[string]bool
}

// WithSortBy orders results by an allow-listed column, newest first by default.
func WithSortBy(sort QuerySortBy) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(sort.Field)
		if field == "" || (sort.Allow != nil && !sort.Allow[field]) {
			field = "created_at"
		}
		direction := "ASC"
		if sort.Desc || strings.TrimSpace(sort.Field) == "" {
			direction = "DESC"
		}
		return db.Order(fmt.Sprintf("%s %s", field, direction))
	})
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}
