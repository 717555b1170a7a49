package generator

import (
	"go/format"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querybind/querybind/bind"
	"github.com/querybind/querybind/query/input"
)

func recordPlan() *bind.Plan {
	return &bind.Plan{
		QueryName:  "find_user",
		SQL:        "SELECT id, email, created_at FROM users WHERE id = $1",
		Strategy:   bind.Record,
		Shape:      input.GeneratedRecord,
		RecordName: "FindUserRow",
		Fields: []bind.Field{
			{Name: "Id", Column: "id", GoType: "int64"},
			{Name: "Email", Column: "email", GoType: "*string", Nullable: true},
			{Name: "CreatedAt", Column: "created_at", GoType: "time.Time"},
		},
		Params:   []string{"int64"},
		ArgNames: []string{"id"},
	}
}

func TestGenerateRecord(t *testing.T) {
	src, err := Generate("queries", []*bind.Plan{recordPlan()})
	require.NoError(t, err)
	code := string(src)

	assert.Contains(t, code, "// Code generated by querybind. DO NOT EDIT.")
	assert.Contains(t, code, "package queries")
	assert.Contains(t, code, "type FindUserRow struct {")
	assert.Contains(t, code, "Email *string")
	assert.Contains(t, code, "func FindUser(ctx context.Context, db *sql.DB, id int64) ([]FindUserRow, error)")
	assert.Contains(t, code, `const findUserSQL = "SELECT id, email, created_at FROM users WHERE id = $1"`)
	assert.Contains(t, code, "rows.Scan(&row.Id, &row.Email, &row.CreatedAt)")

	// time.Time in a field pulls in the time import.
	assert.Contains(t, code, `"time"`)
}

func TestGenerateExec(t *testing.T) {
	plan := &bind.Plan{
		QueryName: "delete_user",
		SQL:       "DELETE FROM users WHERE id = $1",
		Strategy:  bind.Exec,
		Shape:     input.GeneratedRecord,
		Params:    []string{"int64"},
		ArgNames:  []string{"id"},
	}

	src, err := Generate("queries", []*bind.Plan{plan})
	require.NoError(t, err)
	code := string(src)

	assert.Contains(t, code, "func DeleteUser(ctx context.Context, db *sql.DB, id int64) (sql.Result, error)")
	assert.Contains(t, code, "db.ExecContext(ctx, deleteUserSQL, id)")
	assert.NotContains(t, code, "type DeleteUser")
}

func TestGenerateScalar(t *testing.T) {
	plan := &bind.Plan{
		QueryName: "count_users",
		SQL:       "SELECT count(*) FROM users",
		Strategy:  bind.ScalarValue,
		Shape:     input.Scalar,
		Fields:    []bind.Field{{Name: "Count", Column: "count", GoType: "int64"}},
	}

	src, err := Generate("queries", []*bind.Plan{plan})
	require.NoError(t, err)
	code := string(src)

	assert.Contains(t, code, "func CountUsers(ctx context.Context, db *sql.DB) (int64, error)")
	assert.Contains(t, code, "db.QueryRowContext(ctx, countUsersSQL).Scan(&value)")
}

func TestGenerateStruct(t *testing.T) {
	plan := &bind.Plan{
		QueryName:  "list_users",
		SQL:        "SELECT id, email FROM users",
		Strategy:   bind.Struct,
		Shape:      input.ExistingType,
		RecordName: "User",
		Fields: []bind.Field{
			{Name: "Id", Column: "id", GoType: "int64"},
			{Name: "Email", Column: "email", GoType: "string"},
		},
	}

	src, err := Generate("queries", []*bind.Plan{plan})
	require.NoError(t, err)
	code := string(src)

	assert.Contains(t, code, "func ListUsers(ctx context.Context, db *sql.DB) ([]User, error)")
	assert.NotContains(t, code, "type User struct")
}

func TestGeneratedSourceIsFormatted(t *testing.T) {
	src, err := Generate("queries", []*bind.Plan{recordPlan()})
	require.NoError(t, err)

	formatted, err := format.Source(src)
	require.NoError(t, err)
	assert.Equal(t, src, formatted)
}

func TestGenerateMultiplePlansKeepOrder(t *testing.T) {
	first := recordPlan()
	second := &bind.Plan{
		QueryName: "delete_user",
		SQL:       "DELETE FROM users WHERE id = $1",
		Strategy:  bind.Exec,
		Shape:     input.GeneratedRecord,
		Params:    []string{"int64"},
		ArgNames:  []string{"id"},
	}

	src, err := Generate("queries", []*bind.Plan{first, second})
	require.NoError(t, err)
	code := string(src)

	assert.Less(t, strings.Index(code, "func FindUser("), strings.Index(code, "func DeleteUser("))
}
