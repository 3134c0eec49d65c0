package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/casbin/casbin/v2/util"
	"github.com/jmoiron/sqlx"
	sqlxadapter "github.com/memwey/casbin-sqlx-adapter"
)

// defaultModel is role-based access over request paths and methods.
const defaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// NewEnforcer creates a Casbin enforcer whose policies live in the
// casbin_rule table of db. An empty modelPath uses the built-in model.
func NewEnforcer(db *sqlx.DB, modelPath string) (*casbin.Enforcer, error) {
	// Initialize the database adapter for Casbin. This allows Casbin to store
	// its policies in our application's database.
	adapter := sqlxadapter.NewAdapterFromOptions(&sqlxadapter.AdapterOptions{
		DB:        db,
		TableName: "casbin_rule",
	})

	enforcer, err := newEnforcer(modelPath, adapter)
	if err != nil {
		return nil, err
	}

	// Load all authorization policies from the database.
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	return enforcer, nil
}

// NewMemoryEnforcer creates an enforcer with the built-in model and no
// persistence, seeded with the default policies.
func NewMemoryEnforcer() (*casbin.Enforcer, error) {
	enforcer, err := newEnforcer("", nil)
	if err != nil {
		return nil, err
	}
	if err := SeedDefaultPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func newEnforcer(modelPath string, adapter persist.Adapter) (*casbin.Enforcer, error) {
	var (
		m   model.Model
		err error
	)
	if modelPath != "" {
		m, err = model.NewModelFromFile(modelPath)
	} else {
		m, err = model.NewModelFromString(defaultModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy model: %w", err)
	}

	params := []interface{}{m}
	if adapter != nil {
		params = append(params, adapter)
	}
	enforcer, err := casbin.NewEnforcer(params...)
	if err != nil {
		return nil, err
	}

	// keyMatch2 lets policies use wildcards such as "/v1/wiki/*".
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	return enforcer, nil
}
