package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/interaction-clustering/pkg/labeling"
	"github.com/gilchrisn/interaction-clustering/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func fixtureDirs(t *testing.T) (string, string) {
	t.Helper()
	edges := t.TempDir()
	cats := t.TempDir()
	writeFile(t, edges, "mentions.csv", "start_node,end_node\nA,b\na,B\nb,c\nc,a\n")
	writeFile(t, edges, "replies.csv", "x,y\n")
	writeFile(t, cats, "celebrities.csv", "User,Name,Following,Followers,Description\nA,Alice,10,\"1,200\",singer\n")
	writeFile(t, cats, "media.csv", "User,Name,Following,Followers,Description\nb,Daily News,5,900,news outlet\n")
	writeFile(t, cats, "politicians.csv", "User,Name,Following,Followers,Description,Affiliation\nC,Carol,3,50,mp,Party X\n")
	return edges, cats
}

func TestCSVDirEdges(t *testing.T) {
	edgesDir, catsDir := fixtureDirs(t)
	p := NewCSVDir(edgesDir, catsDir)
	ctx := context.Background()

	t.Run("header skipped and lowercased", func(t *testing.T) {
		edges, err := p.Edges(ctx, models.Mentions)
		require.NoError(t, err)
		assert.Equal(t, []models.Edge{
			{StartNode: "a", EndNode: "b"},
			{StartNode: "a", EndNode: "b"},
			{StartNode: "b", EndNode: "c"},
			{StartNode: "c", EndNode: "a"},
		}, edges)
	})

	t.Run("headerless file", func(t *testing.T) {
		edges, err := p.Edges(ctx, models.Replies)
		require.NoError(t, err)
		assert.Equal(t, []models.Edge{{StartNode: "x", EndNode: "y"}}, edges)
	})

	t.Run("missing file is an input data error", func(t *testing.T) {
		_, err := p.Edges(ctx, models.Retweets)
		assert.ErrorIs(t, err, models.ErrInputData)
	})

	t.Run("short row is an input data error", func(t *testing.T) {
		writeFile(t, edgesDir, "retweets.csv", "start_node,end_node\nonly\n")
		_, err := p.Edges(ctx, models.Retweets)
		assert.ErrorIs(t, err, models.ErrInputData)
	})
}

func TestCSVDirCategories(t *testing.T) {
	edgesDir, catsDir := fixtureDirs(t)
	p := NewCSVDir(edgesDir, catsDir)
	ctx := context.Background()

	cats, err := p.Lists(ctx)
	require.NoError(t, err)
	assert.Equal(t, labeling.Celebrity, cats.TypeOf("a"))
	assert.Equal(t, labeling.Media, cats.TypeOf("b"))
	assert.Equal(t, labeling.Politician, cats.TypeOf("c"))

	profiles, err := p.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, labeling.Profile{Name: "Alice", Following: 10, Followers: 1200, Description: "singer"}, profiles.Celebrities["a"])
	assert.Equal(t, "Party X", profiles.Politicians["c"].Affiliation)
	assert.Equal(t, int64(900), profiles.Media["b"].Followers)

	require.NoError(t, os.Remove(filepath.Join(catsDir, "media.csv")))
	_, err = p.Lists(ctx)
	assert.ErrorIs(t, err, models.ErrInputData)
}

func TestCSVDirProfilesNeedUserColumn(t *testing.T) {
	catsDir := t.TempDir()
	writeFile(t, catsDir, "celebrities.csv", "Name\nAlice\n")
	_, err := NewCSVDir(t.TempDir(), catsDir).Tables(context.Background())
	assert.ErrorIs(t, err, models.ErrInputData)
}

func TestMemory(t *testing.T) {
	m := &Memory{
		EdgeLists: map[models.Interaction][]models.Edge{
			models.Mentions: {{StartNode: " A ", EndNode: "B"}},
		},
		Categories: labeling.NewCategories([]string{"a"}, nil, nil),
	}
	ctx := context.Background()

	edges, err := m.Edges(ctx, models.Mentions)
	require.NoError(t, err)
	assert.Equal(t, []models.Edge{{StartNode: "a", EndNode: "b"}}, edges)

	_, err = m.Edges(ctx, models.Replies)
	assert.ErrorIs(t, err, models.ErrInputData)

	cats, err := m.Lists(ctx)
	require.NoError(t, err)
	assert.True(t, cats.Celebrities.Has("a"))
}

func TestPostgresQueries(t *testing.T) {
	assert.Equal(t, `SELECT start_node, end_node FROM "mentions_edges"`, edgesQuery(models.Mentions))
	assert.Equal(t,
		`SELECT user_name, name, following, followers, description, NULL::text FROM "media"`,
		profilesQuery("media", false))
	assert.Equal(t,
		`SELECT user_name, name, following, followers, description, affiliation FROM "politicians"`,
		profilesQuery("politicians", true))
}

func TestPostgresListQuery(t *testing.T) {
	assert.Equal(t, `SELECT name FROM "p_list"`, listQuery(string(labeling.Politician)+"_list"))
}
