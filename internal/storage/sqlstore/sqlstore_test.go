package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/catalog/internal/config"
	"github.com/aanand-mishra/catalog/internal/storage"
	"github.com/aanand-mishra/catalog/internal/types"
)

// createTestStore opens a fresh SQLite database in a temp directory.
func createTestStore(t *testing.T, driver string) *Store {
	t.Helper()
	cfg := config.Storage{
		Driver: driver,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesTables(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite3, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			s := createTestStore(t, driver)
			for _, table := range []string{"persons", "genres"} {
				var name string
				err := s.DB().QueryRow(
					"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
				).Scan(&name)
				assert.NoError(t, err, "table %q not found", table)
			}
		})
	}
}

func TestOpen_Idempotent(t *testing.T) {
	cfg := config.Storage{
		Driver: config.DriverSQLite3,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}
	ctx := context.Background()

	s1, err := Open(ctx, cfg)
	require.NoError(t, err)
	_, err = s1.Persons().Create(ctx, "Ada Lovelace")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s2.Close()

	persons, err := s2.Persons().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "Ada Lovelace", persons[0].FullName)
}

func TestTable_ListAllEmpty(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)

	genres, err := s.Genres().ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)
}

func TestTable_CreateAssignsFreshIDs(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)
	ctx := context.Background()
	persons := s.Persons()

	before, err := persons.ListAll(ctx)
	require.NoError(t, err)

	seen := map[int64]bool{}
	for _, name := range []string{"Miles Davis", "Nina Simone", "Miles Davis"} {
		p, err := persons.Create(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, p.FullName)
		assert.NotZero(t, p.ID)
		assert.False(t, seen[p.ID], "id %d reused", p.ID)
		seen[p.ID] = true
	}

	after, err := persons.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+3)
}

func TestTable_ListAllSortedByName(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)
	ctx := context.Background()
	genres := s.Genres()

	names := []string{"Rock", "Jazz", "Blues", "Jazz", "Ambient"}
	ids := make(map[string][]int64)
	for _, n := range names {
		g, err := genres.Create(ctx, n)
		require.NoError(t, err)
		ids[n] = append(ids[n], g.ID)
	}

	got, err := genres.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(names))

	gotNames := make([]string, len(got))
	for i, g := range got {
		gotNames[i] = g.Name
	}
	assert.True(t, sort.StringsAreSorted(gotNames), "not sorted: %v", gotNames)

	// Equal names come back in id order, every time.
	var jazz []int64
	for _, g := range got {
		if g.Name == "Jazz" {
			jazz = append(jazz, g.ID)
		}
	}
	assert.Equal(t, ids["Jazz"], jazz)

	again, err := genres.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestTable_FindBySubstring(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)
	ctx := context.Background()
	persons := s.Persons()

	all := []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "100% Human", "snake_case"}
	for _, n := range all {
		_, err := persons.Create(ctx, n)
		require.NoError(t, err)
	}

	tests := []struct {
		needle string
		want   []string
	}{
		{needle: "", want: []string{"100% Human", "Ada Lovelace", "Alan Turing", "Grace Hopper", "snake_case"}},
		{needle: "Lovelace", want: []string{"Ada Lovelace"}},
		{needle: "ra", want: []string{"Grace Hopper"}},
		{needle: "%", want: []string{"100% Human"}},
		{needle: "_", want: []string{"snake_case"}},
		{needle: "Nobody", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			got, err := persons.FindBySubstring(ctx, tt.needle)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, p := range got {
				assert.True(t, strings.Contains(p.FullName, tt.needle))
				names = append(names, p.FullName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestTable_Update(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)
	ctx := context.Background()
	genres := s.Genres()

	g, err := genres.Create(ctx, "Jaz")
	require.NoError(t, err)

	updated, err := genres.Update(ctx, g.ID, "Jazz")
	require.NoError(t, err)
	assert.Equal(t, types.Genre{ID: g.ID, Name: "Jazz"}, updated)

	got, err := genres.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Genre{updated}, got)
}

func TestTable_MissingIDLeavesStoreUnchanged(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)
	ctx := context.Background()
	genres := s.Genres()

	_, err := genres.Create(ctx, "Soul")
	require.NoError(t, err)
	before, err := genres.ListAll(ctx)
	require.NoError(t, err)

	_, err = genres.Update(ctx, 999, "Funk")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NotErrorIs(t, err, storage.ErrPersistence)

	err = genres.Delete(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	after, err := genres.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTable_Delete(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite)
	ctx := context.Background()
	persons := s.Persons()

	keep, err := persons.Create(ctx, "Keep")
	require.NoError(t, err)
	drop, err := persons.Create(ctx, "Drop")
	require.NoError(t, err)

	require.NoError(t, persons.Delete(ctx, drop.ID))
	assert.ErrorIs(t, persons.Delete(ctx, drop.ID), storage.ErrNotFound)

	got, err := persons.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Person{keep}, got)
}

func TestTable_PersistenceError(t *testing.T) {
	s := createTestStore(t, config.DriverSQLite3)
	ctx := context.Background()
	require.NoError(t, s.Close())

	_, err := s.Persons().Create(ctx, "Lost")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrPersistence)
	assert.NotErrorIs(t, err, storage.ErrNotFound)

	var serr *storage.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "persons.Create", serr.Op)
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: config.DriverPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))

	lite := &Store{driver: config.DriverSQLite3}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}
