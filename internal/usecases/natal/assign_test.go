package natal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// TestAssignHouseNumberBasic планета между куспидами принадлежит
// начинающемуся дому, дуги полуоткрытые.
func TestAssignHouseNumberBasic(t *testing.T) {
	houses := equalHouses(0)

	n, err := AssignHouseNumber(15, houses)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = AssignHouseNumber(45, houses)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// TestAssignHouseNumberExactCusp долгота ровно на куспиде открывает дом.
func TestAssignHouseNumberExactCusp(t *testing.T) {
	houses := equalHouses(0)

	n, err := AssignHouseNumber(30, houses)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = AssignHouseNumber(330, houses)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

// TestAssignHouseNumberWrapAround дуга последнего дома пересекает 0°.
func TestAssignHouseNumberWrapAround(t *testing.T) {
	houses := equalHouses(345)

	// Дом 1 занимает [345, 15)
	n, err := AssignHouseNumber(350, houses)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = AssignHouseNumber(5, houses)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = AssignHouseNumber(15, houses)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// TestAssignHouseNumberEveryDegree каждая долгота попадает ровно в один дом.
func TestAssignHouseNumberEveryDegree(t *testing.T) {
	houses := equalHouses(17.5)
	for deg := 0.0; deg < 360; deg += 0.5 {
		_, err := AssignHouseNumber(deg, houses)
		require.NoError(t, err, "degree %v", deg)
	}
}

// TestAssignHouseNumberBadCusps неполный список куспидов отклоняется.
func TestAssignHouseNumberBadCusps(t *testing.T) {
	_, err := AssignHouseNumber(10, equalHouses(0)[:11])
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidReferenceData))
}

// TestValidateCuspUniqueness совпадающие куспиды - повреждённые данные домов.
func TestValidateCuspUniqueness(t *testing.T) {
	require.NoError(t, validateCuspUniqueness(equalHouses(120)))

	degenerate := make([]domain.HouseCuspData, 12)
	for i := range degenerate {
		degenerate[i] = domain.HouseCuspData{Number: i + 1, CuspLongitude: 0}
	}
	err := validateCuspUniqueness(degenerate)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidReferenceData))

	domainErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate_cusp_longitude", domainErr.Details["reason"])
}
