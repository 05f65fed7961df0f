package dig_container

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/masomo-finance/apps/api/echo"
	"github.com/trezcool/masomo-finance/core/finance"
)

func TestNew(t *testing.T) {
	_ = os.Setenv("ENV", "test")
	_ = os.Setenv("TEST_DATABASE_ENGINE", InmemEngine)
	defer func() {
		_ = os.Unsetenv("ENV")
		_ = os.Unsetenv("TEST_DATABASE_ENGINE")
	}()

	c := New()
	err := c.Invoke(func(svc finance.ServiceInterface, board *finance.Board, server *echoapi.Server) {
		assert.IsType(t, new(finance.Service), svc)
		assert.NotNil(t, server)

		_, err := board.Current()
		assert.Equal(t, finance.ErrNotLoaded, err)
		assert.Len(t, board.Catalog().Plans(), 4)
	})
	require.NoError(t, err)
}
