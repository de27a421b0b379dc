package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

// storeFactories returns every backend available in this environment. Postgres joins
// the matrix when ARBOR_TEST_DATABASE_URL points at a scratch database.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()
	factories := map[string]func() Store{
		"memory": func() Store { return NewMemory() },
		"sqlite": func() Store {
			s, err := NewSQLite(context.Background(), ":memory:")
			require.NoError(t, err)
			return s
		},
	}
	if url := os.Getenv("ARBOR_TEST_DATABASE_URL"); url != "" {
		factories["postgres"] = func() Store {
			s, err := NewPostgres(context.Background(), url)
			require.NoError(t, err)
			_, err = s.pool.Exec(context.Background(), "TRUNCATE trees, users RESTART IDENTITY")
			require.NoError(t, err)
			return s
		}
	}
	return factories
}

func sampleTree(customID, city, address string) Tree {
	return Tree{
		CustomID:        customID,
		City:            city,
		Address:         address,
		Species:         "Tilia",
		Condition:       "fair",
		Latitude:        floatPtr(45.07),
		Longitude:       floatPtr(7.69),
		TrunkDiameterCM: floatPtr(30),
		NextCheck:       strPtr("2026-03-15"),
	}
}

func TestStoreContract(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()
			defer s.Close()

			id1, err := s.CreateTree(ctx, sampleTree("A1", "Torino", "Via Roma 1"))
			require.NoError(t, err)
			id2, err := s.CreateTree(ctx, sampleTree("A2", "Torino", "Corso Francia 5"))
			require.NoError(t, err)
			noPos := sampleTree("A3", "Milano", "Via Roma 9")
			noPos.Latitude, noPos.Longitude, noPos.NextCheck, noPos.TrunkDiameterCM = nil, nil, nil, nil
			id3, err := s.CreateTree(ctx, noPos)
			require.NoError(t, err)
			assert.True(t, id1 < id2 && id2 < id3)

			_, err = s.CreateTree(ctx, sampleTree("A1", "Roma", "Via Appia"))
			assert.ErrorIs(t, err, ErrDuplicateCustomID)

			got, err := s.GetTree(ctx, id1)
			require.NoError(t, err)
			require.NotNil(t, got)
			want := sampleTree("A1", "Torino", "Via Roma 1")
			want.ID = id1
			if diff := cmp.Diff(want, *got); diff != "" {
				t.Fatalf("GetTree mismatch (-want +got):\n%s", diff)
			}

			byCustom, err := s.GetTreeByCustomID(ctx, "A3")
			require.NoError(t, err)
			require.NotNil(t, byCustom)
			assert.Equal(t, id3, byCustom.ID)
			assert.Nil(t, byCustom.Latitude)
			assert.Nil(t, byCustom.NextCheck)

			missing, err := s.GetTree(ctx, 9999)
			require.NoError(t, err)
			assert.Nil(t, missing)

			cities, err := s.ListCities(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Milano", "Torino"}, cities)

			streets, err := s.ListStreets(ctx, "torino")
			require.NoError(t, err)
			assert.Equal(t, []string{"Corso Francia 5", "Via Roma 1"}, streets)

			trees, err := s.ListTrees(ctx, TreeFilter{City: "TORINO", Address: "roma"})
			require.NoError(t, err)
			require.Len(t, trees, 1)
			assert.Equal(t, id1, trees[0].ID)

			all, err := s.ListTrees(ctx, TreeFilter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []int64{id1, id2, id3}, []int64{all[0].ID, all[1].ID, all[2].ID})

			got.Condition = "poor"
			got.CrownDiameterM = floatPtr(4.5)
			require.NoError(t, s.UpdateTree(ctx, *got))
			updated, err := s.GetTree(ctx, id1)
			require.NoError(t, err)
			assert.Equal(t, "poor", updated.Condition)
			require.NotNil(t, updated.CrownDiameterM)
			assert.Equal(t, 4.5, *updated.CrownDiameterM)

			clash := *updated
			clash.CustomID = "A2"
			assert.ErrorIs(t, s.UpdateTree(ctx, clash), ErrDuplicateCustomID)

			ghost := *updated
			ghost.ID = 9999
			ghost.CustomID = "ghost"
			assert.ErrorIs(t, s.UpdateTree(ctx, ghost), ErrNotFound)

			require.NoError(t, s.DeleteTree(ctx, id2))
			assert.ErrorIs(t, s.DeleteTree(ctx, id2), ErrNotFound)
			remaining, err := s.ListTrees(ctx, TreeFilter{City: "Torino"})
			require.NoError(t, err)
			require.Len(t, remaining, 1)
			assert.Equal(t, id1, remaining[0].ID)
		})
	}
}

func TestStoreFiltersFoldNonASCII(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			if name == "postgres" {
				t.Skip("lower() folding follows the database LC_CTYPE")
			}
			ctx := context.Background()
			s := factory()
			defer s.Close()

			_, err := s.CreateTree(ctx, sampleTree("FC-1", "Forlì", "Corso Mazzini 4"))
			require.NoError(t, err)
			_, err = s.CreateTree(ctx, sampleTree("FC-2", "Forlì", "Via Università 2"))
			require.NoError(t, err)

			streets, err := s.ListStreets(ctx, "FORLÌ")
			require.NoError(t, err)
			assert.Equal(t, []string{"Corso Mazzini 4", "Via Università 2"}, streets)

			trees, err := s.ListTrees(ctx, TreeFilter{City: "FORLÌ", Address: "UNIVERSITÀ"})
			require.NoError(t, err)
			require.Len(t, trees, 1)
			assert.Equal(t, "FC-2", trees[0].CustomID)
		})
	}
}

func TestStoreUsers(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()
			defer s.Close()

			_, err := s.CreateUser(ctx, "alice", "hash")
			require.NoError(t, err)
			_, err = s.CreateUser(ctx, "alice", "other")
			assert.ErrorIs(t, err, ErrDuplicateUser)

			u, err := s.GetUser(ctx, "alice")
			require.NoError(t, err)
			require.NotNil(t, u)
			assert.Equal(t, "hash", u.PasswordHash)
			assert.Equal(t, "user", u.Role)

			none, err := s.GetUser(ctx, "bob")
			require.NoError(t, err)
			assert.Nil(t, none)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "memory://")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, "sqlite://")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = Open(ctx, "mysql://localhost")
	assert.Error(t, err)
}

func TestTreeFilterMatches(t *testing.T) {
	tree := Tree{City: "Torino", Address: "Via Roma 12"}
	tests := []struct {
		name   string
		filter TreeFilter
		want   bool
	}{
		{"empty", TreeFilter{}, true},
		{"city case-insensitive", TreeFilter{City: "torino"}, true},
		{"city is not a substring match", TreeFilter{City: "Tor"}, false},
		{"address substring", TreeFilter{Address: "roma"}, true},
		{"both", TreeFilter{City: "Torino", Address: "Via Roma"}, true},
		{"address mismatch", TreeFilter{City: "Torino", Address: "Po"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tree))
		})
	}
}
