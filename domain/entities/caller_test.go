package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaller_Can(t *testing.T) {
	t.Parallel()

	admin := Caller{Role: RoleAdmin}
	seller := Caller{Role: RoleSeller, SellerID: 5}
	anonymous := Caller{}

	assert.True(t, admin.Can(CapFinalizeDraws))
	assert.False(t, admin.Can(CapRecordSales))
	assert.True(t, seller.Can(CapRecordSales))
	assert.False(t, seller.Can(CapFinalizeDraws))
	assert.False(t, anonymous.Can(CapViewOwnReport))
}

func TestCaller_ReportScope(t *testing.T) {
	t.Parallel()

	other := int64(9)
	own := int64(5)

	scope, err := Caller{Role: RoleAdmin}.ReportScope(nil)
	require.NoError(t, err)
	assert.Nil(t, scope.SellerID)

	scope, err = Caller{Role: RoleAdmin}.ReportScope(&other)
	require.NoError(t, err)
	assert.Equal(t, other, *scope.SellerID)
	assert.False(t, scope.FinalizedOnly)

	scope, err = Caller{Role: RoleSeller, SellerID: 5}.ReportScope(nil)
	require.NoError(t, err)
	assert.Equal(t, own, *scope.SellerID)
	assert.True(t, scope.FinalizedOnly)

	scope, err = Caller{Role: RoleSeller, SellerID: 5}.ReportScope(&own)
	require.NoError(t, err)
	assert.Equal(t, own, *scope.SellerID)

	_, err = Caller{Role: RoleSeller, SellerID: 5}.ReportScope(&other)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Caller{}.ReportScope(nil)
	assert.ErrorIs(t, err, ErrForbidden)
}
