package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// filter accumulates WHERE conditions with numbered placeholders. A "?" in a
// condition is replaced by the placeholder of the argument it is added with.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", f.last()))
}

// last returns the placeholder of the most recently added argument.
func (f *filter) last() string {
	return "$" + strconv.Itoa(len(f.args))
}

// bind appends arg and returns its placeholder.
func (f *filter) bind(arg any) string {
	f.args = append(f.args, arg)
	return f.last()
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// likeEscape is used with "ESCAPE '\'" in search conditions.
var likeEscape = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s anywhere in a value.
func containsPattern(s string) string {
	return "%" + likeEscape.Replace(s) + "%"
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func now() time.Time {
	return time.Now().UTC()
}
