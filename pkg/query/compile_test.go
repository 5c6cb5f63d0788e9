package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "empty filter matches all rows",
			filter:   Filter{},
			wantSQL:  "",
			wantArgs: nil,
		},
		{
			name:     "nil filter matches all rows",
			filter:   nil,
			wantSQL:  "",
			wantArgs: nil,
		},
		{
			name:     "scalar implies equality",
			filter:   Filter{"name": "ann"},
			wantSQL:  "name = ?",
			wantArgs: []any{"ann"},
		},
		{
			name:     "multiple columns conjoined",
			filter:   Filter{"a": 1, "b": 2},
			wantSQL:  "a = ? AND b = ?",
			wantArgs: []any{1, 2},
		},
		{
			name:     "comparison operators",
			filter:   Filter{"age": map[string]any{"$gte": 21, "$lt": 65}},
			wantSQL:  "age >= ? AND age < ?",
			wantArgs: []any{21, 65},
		},
		{
			name:     "not equals",
			filter:   Filter{"state": map[string]any{"$ne": 0}},
			wantSQL:  "state <> ?",
			wantArgs: []any{0},
		},
		{
			name:     "in set",
			filter:   Filter{"id": map[string]any{"$in": []int{1, 2, 3}}},
			wantSQL:  "id IN (?, ?, ?)",
			wantArgs: []any{1, 2, 3},
		},
		{
			name:     "not in set",
			filter:   Filter{"id": map[string]any{"$nin": []any{4, 5}}},
			wantSQL:  "id NOT IN (?, ?)",
			wantArgs: []any{4, 5},
		},
		{
			name:     "empty in matches nothing",
			filter:   Filter{"id": map[string]any{"$in": []any{}}},
			wantSQL:  "1 = 0",
			wantArgs: nil,
		},
		{
			name:     "empty not-in matches everything",
			filter:   Filter{"id": map[string]any{"$nin": []any{}}},
			wantSQL:  "1 = 1",
			wantArgs: nil,
		},
		{
			name: "or group parenthesized",
			filter: Filter{
				"$or": []Filter{{"state": 1}, {"state": 2}},
			},
			wantSQL:  "(state = ? OR state = ?)",
			wantArgs: []any{1, 2},
		},
		{
			name: "or group combined with column",
			filter: Filter{
				"active": true,
				"$or":    []Filter{{"state": 1}, {"state": 2}},
			},
			wantSQL:  "(state = ? OR state = ?) AND active = ?",
			wantArgs: []any{1, 2, true},
		},
		{
			name: "nested logical groups",
			filter: Filter{
				"$and": []Filter{
					{"$or": []Filter{{"a": 1}, {"b": 2}}},
					{"c": map[string]any{"$gt": 3}},
				},
			},
			wantSQL:  "((a = ? OR b = ?) AND c > ?)",
			wantArgs: []any{1, 2, 3},
		},
		{
			name:     "empty and group is vacuously true",
			filter:   Filter{"$and": []Filter{}},
			wantSQL:  "1 = 1",
			wantArgs: nil,
		},
		{
			name:     "empty or group is vacuously false",
			filter:   Filter{"$or": []Filter{}},
			wantSQL:  "1 = 0",
			wantArgs: nil,
		},
		{
			name: "logical operand as plain maps",
			filter: Filter{
				"$or": []any{
					map[string]any{"state": 1},
					map[string]any{"state": 2},
				},
			},
			wantSQL:  "(state = ? OR state = ?)",
			wantArgs: []any{1, 2},
		},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := c.Where(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestWhereIsDeterministic(t *testing.T) {
	c := NewCompiler(nil)
	filter := Filter{
		"b":   2,
		"a":   map[string]any{"$lt": 9, "$gt": 1},
		"$or": []Filter{{"x": 1}, {"y": 2}},
	}
	first, firstArgs, err := c.Where(filter)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		sql, args, err := c.Where(filter)
		require.NoError(t, err)
		assert.Equal(t, first, sql)
		assert.Equal(t, firstArgs, args)
	}
}

func TestWhereErrors(t *testing.T) {
	c := NewCompiler(nil)

	t.Run("unknown comparison operator", func(t *testing.T) {
		_, _, err := c.Where(Filter{"age": map[string]any{"$within": 5}})
		var opErr *UnsupportedOperatorError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "$within", opErr.Op)
	})

	t.Run("unknown logical operator", func(t *testing.T) {
		_, _, err := c.Where(Filter{"$nor": []Filter{{"a": 1}}})
		var opErr *UnsupportedOperatorError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "$nor", opErr.Op)
	})

	t.Run("in operand must be a slice", func(t *testing.T) {
		_, _, err := c.Where(Filter{"id": map[string]any{"$in": 7}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "$in")
	})

	t.Run("logical operand must be a slice", func(t *testing.T) {
		_, _, err := c.Where(Filter{"$and": Filter{"a": 1}})
		require.Error(t, err)
	})
}

func TestProjection(t *testing.T) {
	assert.Equal(t, "*", Projection(nil))
	assert.Equal(t, "*", Projection([]string{}))
	assert.Equal(t, "username, id", Projection([]string{"username", "id"}))
}

func TestSelect(t *testing.T) {
	c := NewCompiler(nil)

	t.Run("all columns no filter", func(t *testing.T) {
		sql, args, err := c.Select("users", nil, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users", sql)
		assert.Empty(t, args)
	})

	t.Run("projection preserves given order", func(t *testing.T) {
		sql, _, err := c.Select("users", nil, []string{"username", "id"}, 0)
		require.NoError(t, err)
		assert.Equal(t, "SELECT username, id FROM users", sql)
	})

	t.Run("filter and limit", func(t *testing.T) {
		sql, args, err := c.Select("users", Filter{"state": 2}, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users WHERE state = ? LIMIT 1", sql)
		assert.Equal(t, []any{2}, args)
	})
}

func TestCount(t *testing.T) {
	c := NewCompiler(nil)

	sql, args, err := c.Count("users", Filter{"state": 2})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM users WHERE state = ?", sql)
	assert.Equal(t, []any{2}, args)

	sql, args, err = c.Count("users", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM users", sql)
	assert.Empty(t, args)
}

func TestInsert(t *testing.T) {
	c := NewCompiler(nil)

	t.Run("single document", func(t *testing.T) {
		sql, args, err := c.Insert("t", Doc{"b": 2, "a": 1})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?)", sql)
		assert.Equal(t, []any{1, 2}, args)
	})

	t.Run("batch compiles to one multi-row statement", func(t *testing.T) {
		sql, args, err := c.Insert("t", Doc{"a": 1, "b": 2}, Doc{"a": 3, "b": 4})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?), (?, ?)", sql)
		assert.Equal(t, []any{1, 2, 3, 4}, args)
	})

	t.Run("mismatched column sets fail before execution", func(t *testing.T) {
		_, _, err := c.Insert("t", Doc{"a": 1}, Doc{"a": 2, "b": 3})
		var mismatch *SchemaMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 1, mismatch.Row)
		assert.Equal(t, []string{"a"}, mismatch.Want)
		assert.Equal(t, []string{"a", "b"}, mismatch.Got)
	})

	t.Run("no documents", func(t *testing.T) {
		_, _, err := c.Insert("t")
		require.Error(t, err)
	})

	t.Run("empty document", func(t *testing.T) {
		_, _, err := c.Insert("t", Doc{})
		require.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	c := NewCompiler(nil)

	t.Run("set and where", func(t *testing.T) {
		sql, args, err := c.Update("t", Filter{"id": 7}, Doc{"x": 0})
		require.NoError(t, err)
		assert.Equal(t, "UPDATE t SET x = ? WHERE id = ?", sql)
		assert.Equal(t, []any{0, 7}, args)
	})

	t.Run("empty filter updates all rows", func(t *testing.T) {
		sql, args, err := c.Update("t", Filter{}, Doc{"x": 0})
		require.NoError(t, err)
		assert.Equal(t, "UPDATE t SET x = ?", sql)
		assert.Equal(t, []any{0}, args)
	})

	t.Run("empty value document", func(t *testing.T) {
		_, _, err := c.Update("t", nil, Doc{})
		require.Error(t, err)
	})
}

func TestDelete(t *testing.T) {
	c := NewCompiler(nil)

	sql, args, err := c.Delete("t", Filter{"id": 7})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t WHERE id = ?", sql)
	assert.Equal(t, []any{7}, args)

	sql, args, err = c.Delete("t", nil)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM t", sql)
	assert.Empty(t, args)
}

func TestDollarPlaceholders(t *testing.T) {
	c := NewCompiler(Dollar)

	t.Run("numbering runs across set and where", func(t *testing.T) {
		sql, args, err := c.Update("t", Filter{"id": 7}, Doc{"a": 1, "b": 2})
		require.NoError(t, err)
		assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", sql)
		assert.Equal(t, []any{1, 2, 7}, args)
	})

	t.Run("in set", func(t *testing.T) {
		sql, _, err := c.Where(Filter{"id": map[string]any{"$in": []int{1, 2}}})
		require.NoError(t, err)
		assert.Equal(t, "id IN ($1, $2)", sql)
	})
}
