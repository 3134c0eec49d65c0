package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// likeEscape is portable across MySQL, PostgreSQL and SQLite; backslash is not.
const likeEscape = "!"

// Compiler turns Options into store-ready select statements for any Kind.
type Compiler struct {
	sb sq.StatementBuilderType
}

// NewCompiler creates a Compiler emitting the given placeholder format
// (sq.Question for MySQL/SQLite, sq.Dollar for PostgreSQL).
func NewCompiler(format sq.PlaceholderFormat) *Compiler {
	return &Compiler{sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// Compile builds the select for kind. Extra predicates are ANDed with the
// search and id filters; their order does not change the result set.
// Invalid options fail with ErrInvalidQuery before anything is built.
func (c *Compiler) Compile(kind Kind, opts Options, extra ...sq.Sqlizer) (sq.SelectBuilder, error) {
	if opts.Pagination != nil {
		p := *opts.Pagination
		opts.Pagination = &p
	}
	if opts.Order != nil {
		o := *opts.Order
		opts.Order = &o
	}
	if err := opts.Validate(); err != nil {
		return sq.SelectBuilder{}, err
	}

	sb := c.sb.Select(kind.Columns...).From(kind.Table)

	var where sq.And
	if pred := Search(kind.SearchColumn, opts.Search); pred != nil {
		where = append(where, pred)
	}
	if opts.IDs != nil {
		where = append(where, In(kind.IDColumn, opts.IDs))
	}
	for _, pred := range extra {
		if pred != nil {
			where = append(where, pred)
		}
	}
	if len(where) > 0 {
		sb = sb.Where(where)
	}

	if o := opts.Order; o != nil {
		column, ok := kind.Sortable[o.Field]
		if !ok {
			return sq.SelectBuilder{}, fmt.Errorf("%w: %s cannot be ordered by %q", ErrInvalidQuery, kind.Name, o.Field)
		}
		sb = sb.OrderBy(column + " " + strings.ToUpper(string(o.Direction)))
	}

	if p := opts.Pagination; p != nil {
		sb = sb.Limit(p.Limit()).Offset(p.Offset())
	}
	return sb, nil
}

// Search matches column case-insensitively against term as a substring.
// An empty term yields no predicate.
func Search(column, term string) sq.Sqlizer {
	if term == "" {
		return nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return sq.Expr("LOWER("+column+") LIKE ? ESCAPE '"+likeEscape+"'", pattern)
}

// In restricts column to values. A single value compiles to an equality,
// several to set membership, none to a predicate that matches nothing.
func In(column string, values []string) sq.Sqlizer {
	values = dedupe(values)
	if len(values) == 1 {
		return sq.Eq{column: values[0]}
	}
	return sq.Eq{column: values}
}

// InSubquery restricts column to the rows produced by sub. sub must use the
// default question placeholders; the outer statement rewrites them.
func InSubquery(column string, sub sq.SelectBuilder) sq.Sqlizer {
	return subquery{column: column, sub: sub}
}

type subquery struct {
	column string
	sub    sq.SelectBuilder
}

func (s subquery) ToSql() (string, []interface{}, error) {
	sql, args, err := s.sub.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return "", nil, err
	}
	return s.column + " IN (" + sql + ")", args, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
