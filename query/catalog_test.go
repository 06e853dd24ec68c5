package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogTable(t *testing.T) {
	require := require.New(t)

	catalog := NewCatalog()
	location := &Table{
		Backend: "frame",
		Name:    "location",
		Schema: Schema{
			{Name: "state", Type: Text, Nullable: true, Source: "location"},
			{Name: "city", Type: Text, Nullable: true, Source: "location"},
		},
	}
	catalog.AddTable(location)

	table, err := catalog.Table("frame", "location")
	require.NoError(err)
	require.Equal(location, table)

	_, err = catalog.Table("frame", "missing")
	require.Error(err)
	require.True(ErrTableNotFound.Is(err))

	_, err = catalog.Table("missing", "location")
	require.Error(err)
	require.True(ErrTableNotFound.Is(err))
}

func TestCatalogListing(t *testing.T) {
	require := require.New(t)

	catalog := NewCatalog()
	catalog.AddTable(&Table{Backend: "sqlite", Name: "users"})
	catalog.AddTable(&Table{Backend: "sqlite", Name: "events"})
	catalog.AddTable(&Table{Backend: "frame", Name: "location"})

	require.Equal([]string{"frame", "sqlite"}, catalog.Backends())
	require.Equal([]string{"events", "users"}, catalog.Tables("sqlite"))
	require.Equal([]string{"location"}, catalog.Tables("frame"))
	require.Empty(catalog.Tables("missing"))
}

func TestDecodeCatalog(t *testing.T) {
	require := require.New(t)

	catalog, err := DecodeCatalog(strings.NewReader(`
backends:
  - name: sqlite
    tables:
      - name: users
        columns:
          - {name: id, type: integer, nullable: false}
          - {name: name, type: text, nullable: true}
  - name: frame
    tables:
      - name: location
        columns:
          - {name: state, type: text, nullable: true}
          - {name: city, type: text, nullable: true}
`))
	require.NoError(err)

	users, err := catalog.Table("sqlite", "users")
	require.NoError(err)
	require.Len(users.Schema, 2)
	require.Equal("id", users.Schema[0].Name)
	require.Equal(Integer, users.Schema[0].Type)
	require.False(users.Schema[0].Nullable)
	require.Equal("users", users.Schema[0].Source)

	location, err := catalog.Table("frame", "location")
	require.NoError(err)
	require.Equal(Text, location.Schema[0].Type)
	require.True(location.Schema[0].Nullable)
}

func TestDecodeCatalogInvalidType(t *testing.T) {
	require := require.New(t)

	_, err := DecodeCatalog(strings.NewReader(`
backends:
  - name: sqlite
    tables:
      - name: users
        columns:
          - {name: id, type: decimal}
`))
	require.Error(err)
	require.True(ErrInvalidType.Is(err))
}
