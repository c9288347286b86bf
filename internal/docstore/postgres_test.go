package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWhereCollectionOnly(t *testing.T) {
	where, args := buildWhere("brands", nil, nil)

	assert.Equal(t, "WHERE collection = $1", where)
	assert.Equal(t, []interface{}{"brands"}, args)
}

func TestBuildWhereFilterKeysAreOrdered(t *testing.T) {
	filter := map[string]string{"category": "Herbal", "approved": "yes"}

	where, args := buildWhere("generics", filter, nil)

	// Sorted keys: approved before category, regardless of map order.
	assert.Equal(t,
		"WHERE collection = $1 AND fields->>'approved' = $2 AND fields->>'category' = $3",
		where)
	assert.Equal(t, []interface{}{"generics", "yes", "Herbal"}, args)
}

func TestBuildWhereContains(t *testing.T) {
	where, args := buildWhere("brands", nil, &Contains{Field: "name", Value: "napa"})

	assert.Equal(t, "WHERE collection = $1 AND fields->>'name' ILIKE $2", where)
	assert.Equal(t, []interface{}{"brands", "%napa%"}, args)
}

func TestBuildWhereEscapesLikeWildcards(t *testing.T) {
	_, args := buildWhere("brands", nil, &Contains{Field: "name", Value: "50%_a\\b"})

	assert.Equal(t, `%50\%\_a\\b%`, args[1])
}

func TestSanitizeKeyStripsQuoting(t *testing.T) {
	assert.Equal(t, "name", sanitizeKey("name"))
	assert.Equal(t, "product_type", sanitizeKey("product_type"))
	assert.Equal(t, "name", sanitizeKey("na'me"))
	assert.Equal(t, "name", sanitizeKey(`na"--me`))
}
