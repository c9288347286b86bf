package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPathsAndCollectionsAreUnique(t *testing.T) {
	paths := map[string]bool{}
	collections := map[string]bool{}

	for _, s := range Registry() {
		assert.False(t, paths[s.APIPath], "duplicate API path %s", s.APIPath)
		assert.False(t, collections[s.Collection], "duplicate collection %s", s.Collection)
		paths[s.APIPath] = true
		collections[s.Collection] = true
	}
}

func TestRegistryReferencesResolveToDeclaredCollections(t *testing.T) {
	collections := map[string]bool{}
	for _, s := range Registry() {
		collections[s.Collection] = true
	}

	for _, s := range Registry() {
		for _, ref := range s.RefFields {
			assert.True(t, collections[ref.Collection],
				"%s.%s references unknown collection %s", s.Name, ref.Field, ref.Collection)
		}
	}
}

func TestRegistryEveryEntityHasDisplayField(t *testing.T) {
	for _, s := range Registry() {
		display := s.DisplayField()
		require.Contains(t, []string{"name", "title"}, display)
		assert.True(t, s.allowedFields()[display],
			"%s display field %s is not writable", s.Name, display)
	}
}

func TestRegistryBrandReferencesAreRequired(t *testing.T) {
	brand := schemaByName(t, "Brand")

	required := map[string]bool{}
	for _, ref := range brand.RefFields {
		required[ref.Field] = ref.Required
	}

	assert.True(t, required["generic"])
	assert.True(t, required["manufacturer"])
}

func TestRegistrySingletonPolicies(t *testing.T) {
	policies := map[string]SingletonPolicy{}
	for _, s := range Registry() {
		policies[s.Name] = s.Singleton
	}

	// The two singleton entities intentionally diverge.
	assert.Equal(t, RejectIfExists, policies["About"])
	assert.Equal(t, UpsertIfExists, policies["Hero"])
}
