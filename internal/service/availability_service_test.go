package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/bitfantasy/nimo-ims/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAvailabilityTest(t *testing.T) (*gorm.DB, *BOMService, *AvailabilityService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	bomSvc := NewBOMService(repos.BOM, repos.Product, db, nil)
	availSvc := NewAvailabilityService(repos.BOM, repos.LocationStock)
	return db, bomSvc, availSvc
}

func TestAvailabilityCheckGlobalStock(t *testing.T) {
	db, bomSvc, availSvc := setupAvailabilityTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID

	finished := testutil.SeedProduct(t, db, tenant, "SKU-FIN", "Finished Widget", 0)
	compC := testutil.SeedProduct(t, db, tenant, "SKU-C", "Component C", 11)
	compD := testutil.SeedProduct(t, db, tenant, "SKU-D", "Component D", 3)

	bom, err := bomSvc.Create(ctx, tenant, "user-1", &CreateBOMRequest{
		FinishedProductID: finished.ID,
		Status:            entity.BOMStatusActive,
		Items: []BOMItemRequest{
			{ComponentProductID: compC.ID, Quantity: 2, WastagePercent: 10},
			{ComponentProductID: compD.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// 2 * 5 * 1.10 = 11，库存恰好够
	result, err := availSvc.Check(ctx, tenant, bom.ID, 5, "")
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)

	lineC := result.Lines[0]
	assert.Equal(t, compC.ID, lineC.ComponentProductID)
	assert.Equal(t, int64(11), lineC.RequiredQuantity)
	assert.Equal(t, float64(11), lineC.AvailableQuantity)
	assert.Equal(t, int64(0), lineC.ShortfallQuantity)
	assert.True(t, lineC.Sufficient)

	lineD := result.Lines[1]
	assert.Equal(t, int64(5), lineD.RequiredQuantity)
	assert.Equal(t, int64(2), lineD.ShortfallQuantity)
	assert.False(t, lineD.Sufficient)

	// D 缺口拖垮整体结论
	assert.False(t, result.CanAssemble)
}

func TestAvailabilityCheckLocationScoped(t *testing.T) {
	db, bomSvc, availSvc := setupAvailabilityTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID

	finished := testutil.SeedProduct(t, db, tenant, "SKU-FIN", "Finished Widget", 0)
	comp := testutil.SeedProduct(t, db, tenant, "SKU-C", "Component C", 100)
	loc := testutil.SeedLocation(t, db, tenant, "WH-A", "Warehouse A")
	testutil.SeedLocationStock(t, db, tenant, comp.ID, loc.ID, 4)

	bom, err := bomSvc.Create(ctx, tenant, "user-1", &CreateBOMRequest{
		FinishedProductID: finished.ID,
		Items:             []BOMItemRequest{{ComponentProductID: comp.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// 全局库存充裕，库位库存不足
	result, err := availSvc.Check(ctx, tenant, bom.ID, 10, loc.ID)
	require.NoError(t, err)
	assert.False(t, result.CanAssemble)
	assert.Equal(t, float64(4), result.Lines[0].AvailableQuantity)
	assert.Equal(t, int64(6), result.Lines[0].ShortfallQuantity)

	// 库位无库存记录按0处理
	locB := testutil.SeedLocation(t, db, tenant, "WH-B", "Warehouse B")
	result, err = availSvc.Check(ctx, tenant, bom.ID, 1, locB.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), result.Lines[0].AvailableQuantity)
	assert.Equal(t, int64(1), result.Lines[0].ShortfallQuantity)
}

func TestAvailabilityCheckValidation(t *testing.T) {
	db, bomSvc, availSvc := setupAvailabilityTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID

	finished := testutil.SeedProduct(t, db, tenant, "SKU-FIN", "Finished Widget", 0)
	comp := testutil.SeedProduct(t, db, tenant, "SKU-C", "Component C", 100)
	bom, err := bomSvc.Create(ctx, tenant, "user-1", &CreateBOMRequest{
		FinishedProductID: finished.ID,
		Items:             []BOMItemRequest{{ComponentProductID: comp.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = availSvc.Check(ctx, tenant, bom.ID, 0, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = availSvc.Check(ctx, tenant, "no-such-bom", 1, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = availSvc.Check(ctx, tenant, bom.ID, 1, "no-such-location")
	assert.ErrorIs(t, err, ErrNotFound)
}
