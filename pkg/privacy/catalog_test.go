package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	t.Run("Totals", func(t *testing.T) {
		assert.Equal(t, 26, TotalAttributes())
		assert.Len(t, Catalog(), 5)
	})

	t.Run("Known Attributes", func(t *testing.T) {
		assert.True(t, KnownAttribute("user.income"))
		assert.True(t, KnownAttribute("savings_goals.status"))
		assert.False(t, KnownAttribute("user.ssn"))
	})

	t.Run("Defaults Allow Everything", func(t *testing.T) {
		perms := DefaultPermissions()
		assert.Len(t, perms, TotalAttributes())
		for id, allowed := range perms {
			assert.True(t, allowed, id)
		}
	})

	t.Run("Returns A Copy", func(t *testing.T) {
		c := Catalog()
		c[0].Attributes[0].Name = "changed"
		assert.Equal(t, "Income", Catalog()[0].Attributes[0].Name)
	})
}
