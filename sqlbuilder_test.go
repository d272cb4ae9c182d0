package flatdoc

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
)

var (
	postgresDialect = Dialect{Name: "postgres", DataColumnType: "JSONB", MatchOperator: "~", NumberedPlaceholders: true}
	sqliteDialect   = Dialect{Name: "sqlite", DataColumnType: "TEXT", MatchOperator: "REGEXP", NumberedPlaceholders: false}
)

func mustCompileAddress(t *testing.T, expr string) Address {
	t.Helper()
	addr, err := CompileAddress(expr)
	if err != nil {
		t.Fatalf("CompileAddress(%q) failed: %v", expr, err)
	}
	return addr
}

func TestCreateCollection(t *testing.T) {
	qb := NewQueryBuilder(postgresDialect)
	ddl := qb.CreateCollection("users")
	want := `CREATE TABLE IF NOT EXISTS "users" (name TEXT NOT NULL, path TEXT NOT NULL, data JSONB, PRIMARY KEY (name, path))`
	if ddl != want {
		t.Errorf("CreateCollection = %q, want %q", ddl, want)
	}

	quoted := NewQueryBuilder(sqliteDialect).CreateCollection(`odd"name`)
	if !strings.Contains(quoted, `"odd""name"`) {
		t.Errorf("identifier not escaped: %q", quoted)
	}
}

func TestBuildWrite_Record(t *testing.T) {
	qb := NewQueryBuilder(postgresDialect)
	addr := mustCompileAddress(t, "users[0]")
	value := map[string]interface{}{"name": "John", "age": float64(30)}

	stmts, err := qb.BuildWrite(addr, value)
	if err != nil {
		t.Fatalf("BuildWrite failed: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	wantSQL := `INSERT INTO "users" (name, path, data) VALUES ($1, $2, $3) ON CONFLICT (name, path) DO UPDATE SET data = excluded.data`
	wantArgs := [][]interface{}{
		{"0", "age", "30"},
		{"0", "name", `"John"`},
	}
	for i, stmt := range stmts {
		if stmt.SQL != wantSQL {
			t.Errorf("statement %d SQL = %q, want %q", i, stmt.SQL, wantSQL)
		}
		if !reflect.DeepEqual(stmt.Args, wantArgs[i]) {
			t.Errorf("statement %d args = %v, want %v", i, stmt.Args, wantArgs[i])
		}
	}
}

func TestBuildWrite_SubPath(t *testing.T) {
	qb := NewQueryBuilder(sqliteDialect)
	addr := mustCompileAddress(t, "users[0].address.city")

	stmts, err := qb.BuildWrite(addr, "Oslo")
	if err != nil {
		t.Fatalf("BuildWrite failed: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	wantArgs := []interface{}{"0", "address.city", `"Oslo"`}
	if !reflect.DeepEqual(stmts[0].Args, wantArgs) {
		t.Errorf("args = %v, want %v", stmts[0].Args, wantArgs)
	}
	if !strings.Contains(stmts[0].SQL, "VALUES (?, ?, ?)") {
		t.Errorf("expected positional placeholders, got %q", stmts[0].SQL)
	}
}

func TestBuildWrite_CollectionSeeding(t *testing.T) {
	qb := NewQueryBuilder(postgresDialect)
	addr := mustCompileAddress(t, "users")
	value := []interface{}{
		map[string]interface{}{"name": "John"},
		map[string]interface{}{"name": "Jane"},
	}

	stmts, err := qb.BuildWrite(addr, value)
	if err != nil {
		t.Fatalf("BuildWrite failed: %v", err)
	}
	wantArgs := [][]interface{}{
		{"0", "name", `"John"`},
		{"1", "name", `"Jane"`},
	}
	if len(stmts) != len(wantArgs) {
		t.Fatalf("expected %d statements, got %d", len(wantArgs), len(stmts))
	}
	for i, stmt := range stmts {
		if !reflect.DeepEqual(stmt.Args, wantArgs[i]) {
			t.Errorf("statement %d args = %v, want %v", i, stmt.Args, wantArgs[i])
		}
	}
}

func TestBuildWrite_BareScalar(t *testing.T) {
	qb := NewQueryBuilder(sqliteDialect)
	addr := mustCompileAddress(t, "test")

	stmts, err := qb.BuildWrite(addr, "hello world")
	if err != nil {
		t.Fatalf("BuildWrite failed: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	wantArgs := []interface{}{ScalarKey, "", `"hello world"`}
	if !reflect.DeepEqual(stmts[0].Args, wantArgs) {
		t.Errorf("args = %v, want %v", stmts[0].Args, wantArgs)
	}
}

func TestBuildWrite_EmptyContainers(t *testing.T) {
	qb := NewQueryBuilder(sqliteDialect)

	for name, tc := range map[string]struct {
		value interface{}
		data  string
	}{
		"empty object": {map[string]interface{}{}, "{}"},
		"empty array":  {[]interface{}{}, "[]"},
	} {
		t.Run(name, func(t *testing.T) {
			stmts, err := qb.BuildWrite(mustCompileAddress(t, "cfg"), tc.value)
			if err != nil {
				t.Fatalf("BuildWrite failed: %v", err)
			}
			if len(stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(stmts))
			}
			wantArgs := []interface{}{ScalarKey, "", tc.data}
			if !reflect.DeepEqual(stmts[0].Args, wantArgs) {
				t.Errorf("args = %v, want %v", stmts[0].Args, wantArgs)
			}
		})
	}
}

func TestBuildWrite_WildcardRejected(t *testing.T) {
	qb := NewQueryBuilder(postgresDialect)

	if _, err := qb.BuildWrite(mustCompileAddress(t, "users[*]"), "x"); !IsInvalidAddress(err) {
		t.Errorf("wildcard row key: expected ErrInvalidAddress, got %v", err)
	}
	if _, err := qb.BuildWrite(mustCompileAddress(t, "users[0].tags[*]"), "x"); !IsInvalidAddress(err) {
		t.Errorf("wildcard sub-path: expected ErrInvalidAddress, got %v", err)
	}
}

func TestBuildRead(t *testing.T) {
	cases := []struct {
		name     string
		dialect  Dialect
		expr     string
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			"whole collection",
			postgresDialect,
			"users",
			`SELECT name, path, data FROM "users" ORDER BY name, path`,
			nil,
		},
		{
			"one record",
			postgresDialect,
			"users[0]",
			`SELECT name, path, data FROM "users" WHERE name = $1 ORDER BY name, path`,
			[]interface{}{"0"},
		},
		{
			"record field",
			postgresDialect,
			"users[0].address.city",
			`SELECT name, path, data FROM "users" WHERE name = $1 AND path ~ $2 ORDER BY name, path`,
			[]interface{}{"0", `^address\.city(\.|\[|$)`},
		},
		{
			"wildcard row key drops name filter",
			sqliteDialect,
			"users[*].name",
			`SELECT name, path, data FROM "users" WHERE path REGEXP ? ORDER BY name, path`,
			[]interface{}{`name(\.|\[|$)`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stmt, err := NewQueryBuilder(tc.dialect).BuildRead(mustCompileAddress(t, tc.expr))
			if err != nil {
				t.Fatalf("BuildRead failed: %v", err)
			}
			if stmt.SQL != tc.wantSQL {
				t.Errorf("SQL = %q, want %q", stmt.SQL, tc.wantSQL)
			}
			if !reflect.DeepEqual(stmt.Args, tc.wantArgs) {
				t.Errorf("args = %v, want %v", stmt.Args, tc.wantArgs)
			}
		})
	}
}

func TestPathPattern(t *testing.T) {
	cases := []struct {
		name       string
		subPath    []Segment
		relaxed    bool
		matches    []string
		nonMatches []string
	}{
		{
			"literal member with boundary",
			[]Segment{Member("address")},
			false,
			[]string{"address", "address.city", "address[0]"},
			[]string{"addressBook", "home.address"},
		},
		{
			"literal chain",
			[]Segment{Member("address"), Member("city")},
			false,
			[]string{"address.city", "address.city.zip"},
			[]string{"address.cityCode", "address"},
		},
		{
			"index segment",
			[]Segment{Member("items"), Index(0)},
			false,
			[]string{"items[0]", "items[0].price"},
			[]string{"items[01]", "items[1]"},
		},
		{
			"wildcard consumes exactly one segment",
			[]Segment{Member("items"), Wildcard(), Member("price")},
			false,
			[]string{"items[0].price", "items[12].price.currency", "items.first.price"},
			[]string{"items.price", "items[0].sub.price"},
		},
		{
			"relaxed pattern floats",
			[]Segment{Member("name")},
			true,
			[]string{"name", "profile.name", "name.first"},
			[]string{"age"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pattern, err := pathPattern(tc.subPath, tc.relaxed)
			if err != nil {
				t.Fatalf("pathPattern failed: %v", err)
			}
			re := regexp.MustCompile(pattern)
			for _, p := range tc.matches {
				if !re.MatchString(p) {
					t.Errorf("pattern %q should match %q", pattern, p)
				}
			}
			for _, p := range tc.nonMatches {
				if re.MatchString(p) {
					t.Errorf("pattern %q should not match %q", pattern, p)
				}
			}
		})
	}
}

func TestPathPattern_Empty(t *testing.T) {
	pattern, err := pathPattern(nil, false)
	if err != nil {
		t.Fatalf("pathPattern failed: %v", err)
	}
	if pattern != "" {
		t.Errorf("expected empty pattern, got %q", pattern)
	}
}
