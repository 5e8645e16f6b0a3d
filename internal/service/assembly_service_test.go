package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/bitfantasy/nimo-ims/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingPublisher 记录发布的事件，替代真实 Kafka
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+key)
	return nil
}

type assemblyTestEnv struct {
	db        *gorm.DB
	bomSvc    *BOMService
	asmSvc    *AssemblyService
	publisher *recordingPublisher
}

func setupAssemblyTest(t *testing.T) *assemblyTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	publisher := &recordingPublisher{}
	return &assemblyTestEnv{
		db:        db,
		bomSvc:    NewBOMService(repos.BOM, repos.Product, db, nil),
		asmSvc:    NewAssemblyService(repos.Assembly, repos.BOM, repos.Product, repos.LocationStock, repos.StockMovement, db, publisher, zap.NewNop()),
		publisher: publisher,
	}
}

func (e *assemblyTestEnv) seedActiveBOM(t *testing.T, tenant string, componentStock float64) (*entity.Product, *entity.Product, *entity.BillOfMaterial) {
	t.Helper()
	finished := testutil.SeedProduct(t, e.db, tenant, "SKU-FIN", "Finished Widget", 0)
	comp := testutil.SeedProduct(t, e.db, tenant, "SKU-C", "Component C", componentStock)

	bom, err := e.bomSvc.Create(context.Background(), tenant, "user-1", &CreateBOMRequest{
		FinishedProductID: finished.ID,
		Status:            entity.BOMStatusActive,
		Items: []BOMItemRequest{
			{ComponentProductID: comp.ID, Quantity: 2, WastagePercent: 10},
		},
	})
	require.NoError(t, err)
	return finished, comp, bom
}

func (e *assemblyTestEnv) productQuantity(t *testing.T, tenant, id string) float64 {
	t.Helper()
	var p entity.Product
	require.NoError(t, e.db.Where("tenant_id = ? AND id = ?", tenant, id).First(&p).Error)
	return p.Quantity
}

func TestAssemblyCompleteMovesStock(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	finished, comp, bom := env.seedActiveBOM(t, tenant, 11)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AssemblyStatusInProgress, order.Status)
	assert.Equal(t, entity.AssemblyTypeAssembly, order.OrderType)

	// 建单不动库存
	assert.Equal(t, float64(11), env.productQuantity(t, tenant, comp.ID))

	completed, err := env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssemblyStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// 组件扣 ceil(2*5*1.10)=11，成品入5
	assert.Equal(t, float64(0), env.productQuantity(t, tenant, comp.ID))
	assert.Equal(t, float64(5), env.productQuantity(t, tenant, finished.ID))

	// 每个商品一条流水，符号与方向一致
	var movements []entity.StockMovement
	require.NoError(t, env.db.Where("tenant_id = ? AND reference_id = ?", tenant, order.ID).
		Order("quantity ASC").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, comp.ID, movements[0].ProductID)
	assert.Equal(t, float64(-11), movements[0].Quantity)
	assert.Equal(t, entity.MovementAssemblyConsume, movements[0].MovementType)
	assert.Equal(t, finished.ID, movements[1].ProductID)
	assert.Equal(t, float64(5), movements[1].Quantity)
	assert.Equal(t, entity.MovementAssemblyProduce, movements[1].MovementType)

	assert.Contains(t, env.publisher.events, "assembly.order.completed:"+order.ID)
}

func TestAssemblyCompleteAllowsNegativeStock(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	_, comp, bom := env.seedActiveBOM(t, tenant, 3)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 5,
	})
	require.NoError(t, err)

	// 完成时不做充足性复查，库存可透支为负
	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(-8), env.productQuantity(t, tenant, comp.ID))
}

func TestDisassemblyMirrorsAssembly(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	finished, comp, bom := env.seedActiveBOM(t, tenant, 11)

	asm, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 5,
	})
	require.NoError(t, err)
	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", asm.ID)
	require.NoError(t, err)

	dis, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:     bom.ID,
		OrderType: entity.AssemblyTypeDisassembly,
		Quantity:  5,
	})
	require.NoError(t, err)
	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", dis.ID)
	require.NoError(t, err)

	// 拆解把损耗也按同一公式回收，库存回到起点
	assert.Equal(t, float64(11), env.productQuantity(t, tenant, comp.ID))
	assert.Equal(t, float64(0), env.productQuantity(t, tenant, finished.ID))
}

func TestAssemblyCompleteIsTerminal(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	_, comp, bom := env.seedActiveBOM(t, tenant, 100)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 5,
	})
	require.NoError(t, err)

	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	require.NoError(t, err)

	// 重复完成被拒绝且不再动库存
	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, float64(89), env.productQuantity(t, tenant, comp.ID))

	// 终态不可取消
	_, err = env.asmSvc.Cancel(ctx, tenant, order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAssemblyCancelReleasesNothing(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	_, comp, bom := env.seedActiveBOM(t, tenant, 100)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 5,
	})
	require.NoError(t, err)

	cancelled, err := env.asmSvc.Cancel(ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AssemblyStatusCancelled, cancelled.Status)
	assert.Equal(t, float64(100), env.productQuantity(t, tenant, comp.ID))

	// 取消后不可完成
	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateOrderRequiresActiveBOM(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID

	finished := testutil.SeedProduct(t, env.db, tenant, "SKU-FIN", "Finished Widget", 0)
	comp := testutil.SeedProduct(t, env.db, tenant, "SKU-C", "Component C", 100)

	draft, err := env.bomSvc.Create(ctx, tenant, "user-1", &CreateBOMRequest{
		FinishedProductID: finished.ID,
		Items:             []BOMItemRequest{{ComponentProductID: comp.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    draft.ID,
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    "no-such-bom",
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:     draft.ID,
		OrderType: "REWORK",
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestArchiveBlockedByInProgressOrder(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	_, _, bom := env.seedActiveBOM(t, tenant, 100)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	// 进行中的装配单挡住归档
	_, err = env.bomSvc.Archive(ctx, tenant, bom.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.asmSvc.Cancel(ctx, tenant, order.ID)
	require.NoError(t, err)

	archived, err := env.bomSvc.Archive(ctx, tenant, bom.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BOMStatusArchived, archived.Status)
}

func TestCompleteUsesCurrentRecipe(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	_, comp, bom := env.seedActiveBOM(t, tenant, 100)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:    bom.ID,
		Quantity: 1,
	})
	require.NoError(t, err)

	// 建单后修改配方行项，完成时按最新行项计算
	_, err = env.bomSvc.Update(ctx, tenant, bom.ID, &UpdateBOMRequest{
		Items: []BOMItemRequest{{ComponentProductID: comp.ID, Quantity: 7}},
	})
	require.NoError(t, err)

	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(93), env.productQuantity(t, tenant, comp.ID))
}

func TestCompleteScopedToLocation(t *testing.T) {
	env := setupAssemblyTest(t)
	ctx := context.Background()
	tenant := testutil.DefaultTenantID
	finished, comp, bom := env.seedActiveBOM(t, tenant, 100)
	loc := testutil.SeedLocation(t, env.db, tenant, "WH-A", "Warehouse A")
	testutil.SeedLocationStock(t, env.db, tenant, comp.ID, loc.ID, 50)

	order, err := env.asmSvc.CreateOrder(ctx, tenant, "user-1", &CreateOrderRequest{
		BOMID:      bom.ID,
		Quantity:   5,
		LocationID: loc.ID,
	})
	require.NoError(t, err)

	_, err = env.asmSvc.Complete(ctx, tenant, "user-1", order.ID)
	require.NoError(t, err)

	// 全局与库位库存同步变动
	assert.Equal(t, float64(89), env.productQuantity(t, tenant, comp.ID))

	var row entity.LocationStock
	require.NoError(t, env.db.Where("tenant_id = ? AND product_id = ? AND location_id = ?",
		tenant, comp.ID, loc.ID).First(&row).Error)
	assert.Equal(t, float64(39), row.Quantity)

	// 成品此前无库位记录，完成时 upsert 创建
	var finishedRow entity.LocationStock
	require.NoError(t, env.db.Where("tenant_id = ? AND product_id = ? AND location_id = ?",
		tenant, finished.ID, loc.ID).First(&finishedRow).Error)
	assert.Equal(t, float64(5), finishedRow.Quantity)
}
