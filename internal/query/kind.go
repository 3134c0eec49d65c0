package query

// Kind describes how an entity type maps onto its table so the compiler can
// build queries for any of them.
type Kind struct {
	// Name is the singular public name, e.g. "tag".
	Name string
	// Table is the backing table.
	Table string
	// Columns are selected in this order.
	Columns []string
	// IDColumn is the column the id filter applies to.
	IDColumn string
	// SearchColumn is matched case-insensitively by Options.Search.
	SearchColumn string
	// Sortable maps public field names to columns.
	Sortable map[string]string
}

var (
	Tag = Kind{
		Name:         "tag",
		Table:        "tags",
		Columns:      []string{"id", "name"},
		IDColumn:     "id",
		SearchColumn: "name",
		Sortable:     map[string]string{"id": "id", "name": "name"},
	}

	Category = Kind{
		Name:         "category",
		Table:        "categories",
		Columns:      []string{"id", "name", "description"},
		IDColumn:     "id",
		SearchColumn: "name",
		Sortable:     map[string]string{"id": "id", "name": "name"},
	}

	WikiPage = Kind{
		Name:         "page",
		Table:        "wiki_pages",
		Columns:      []string{"id", "title", "content", "category_id", "author_id", "created_at", "updated_at"},
		IDColumn:     "id",
		SearchColumn: "title",
		Sortable: map[string]string{
			"id":         "id",
			"title":      "title",
			"categoryId": "category_id",
			"createdAt":  "created_at",
			"updatedAt":  "updated_at",
		},
	}

	User = Kind{
		Name:         "user",
		Table:        "users",
		Columns:      []string{"id", "email", "password", "name", "active", "created_at"},
		IDColumn:     "id",
		SearchColumn: "name",
		Sortable:     map[string]string{"id": "id", "name": "name", "createdAt": "created_at"},
	}

	Log = Kind{
		Name:         "log",
		Table:        "logs",
		Columns:      []string{"id", "method", "route", "user_id", "status", "created_at", "finalized_at"},
		IDColumn:     "id",
		SearchColumn: "route",
		Sortable:     map[string]string{"id": "id", "status": "status", "createdAt": "created_at"},
	}
)
