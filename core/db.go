package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderByClause renders orderings as an SQL "ORDER BY" list.
// Fields missing from allowed (api name -> column) are dropped; def is used when nothing is left.
func OrderByClause(orderings []DBOrdering, allowed map[string]string, def ...DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		for _, ord := range def {
			clauses = append(clauses, ord.String())
		}
	}
	return strings.Join(clauses, ", ")
}
