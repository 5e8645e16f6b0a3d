package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ims/internal/model/entity"
	"github.com/bitfantasy/nimo-ims/internal/repository"
	"github.com/xuri/excelize/v2"
)

// StockMovementService 库存流水服务，面向审计的只读投影与导出
type StockMovementService struct {
	movementRepo *repository.StockMovementRepository
}

// NewStockMovementService 创建库存流水服务
func NewStockMovementService(movementRepo *repository.StockMovementRepository) *StockMovementService {
	return &StockMovementService{movementRepo: movementRepo}
}

// List 分页查询流水
func (s *StockMovementService) List(ctx context.Context, tenantID string, params repository.MovementListParams) ([]entity.StockMovement, int64, error) {
	return s.movementRepo.List(ctx, tenantID, params)
}

var movementExportHeaders = []string{
	"时间", "单据号", "商品编码", "商品名称", "库位", "变动类型", "数量", "原因", "操作人",
}

// Export 导出流水为xlsx
func (s *StockMovementService) Export(ctx context.Context, tenantID string, params repository.MovementListParams) (*excelize.File, string, error) {
	movements, err := s.movementRepo.ListAll(ctx, tenantID, params)
	if err != nil {
		return nil, "", fmt.Errorf("list movements: %w", err)
	}

	f := excelize.NewFile()
	sheet := "StockMovements"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range movementExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, mv := range movements {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), mv.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), mv.ReferenceNumber)
		if mv.Product != nil {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), mv.Product.SKU)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), mv.Product.Name)
		}
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), mv.LocationID)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), mv.MovementType)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), mv.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), mv.Reason)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), mv.CreatedBy)
	}

	colWidths := []float64{20, 14, 16, 24, 12, 20, 10, 28, 12}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("stock_movements_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, filename, nil
}
