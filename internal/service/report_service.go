package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/crumbhouse/bakery-api/internal/domain"
	"github.com/crumbhouse/bakery-api/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	topProductsLimit = 10
	expiringSoonDays = 7
)

// ReportService builds read-only aggregates. Rows are loaded for the period and
// bucketed in Go so the same code runs on PostgreSQL and SQLite.
type ReportService struct {
	orderRepo        *repository.OrderRepository
	inventoryRepo    *repository.InventoryRepository
	productionRepo   *repository.ProductionRepository
	deliveryRepo     *repository.DeliveryRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
	now              func() time.Time
}

func NewReportService(
	orderRepo *repository.OrderRepository,
	inventoryRepo *repository.InventoryRepository,
	productionRepo *repository.ProductionRepository,
	deliveryRepo *repository.DeliveryRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		orderRepo:        orderRepo,
		inventoryRepo:    inventoryRepo,
		productionRepo:   productionRepo,
		deliveryRepo:     deliveryRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// Sales aggregates orders created in the period. Cancelled and returned orders are
// counted per status but excluded from revenue.
func (s *ReportService) Sales(ctx context.Context, period string) (*domain.SalesReport, error) {
	p := domain.ResolveReportPeriod(period, s.now())
	orders, err := s.orderRepo.ListCreatedBetween(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	report := &domain.SalesReport{
		Period:      p,
		Revenue:     decimal.Zero,
		ByStatus:    map[string]int{},
		ByChannel:   map[string]int{},
		Daily:       dailyBuckets(p),
		TopProducts: []domain.ProductSales{},
	}
	dayIndex := make(map[string]int, len(report.Daily))
	for i, b := range report.Daily {
		dayIndex[b.Date] = i
	}
	products := map[uuid.UUID]*domain.ProductSales{}

	revenueOrders := 0
	for _, order := range orders {
		report.OrderCount++
		report.ByStatus[string(order.Status)]++
		report.ByChannel[string(order.Channel)]++
		if !countsAsRevenue(order.Status) {
			continue
		}
		revenueOrders++
		report.Revenue = report.Revenue.Add(order.TotalAmount)

		if i, ok := dayIndex[order.CreatedAt.UTC().Format("2006-01-02")]; ok {
			report.Daily[i].Orders++
			report.Daily[i].Revenue = report.Daily[i].Revenue.Add(order.TotalAmount)
		}
		for _, item := range order.Items {
			ps, ok := products[item.ProductID]
			if !ok {
				ps = &domain.ProductSales{ProductID: item.ProductID, Revenue: decimal.Zero}
				if item.Product != nil {
					ps.Name = item.Product.Name
					ps.SKU = item.Product.SKU
				}
				products[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal)
		}
	}

	if revenueOrders > 0 {
		report.AverageOrderValue = report.Revenue.Div(decimal.NewFromInt(int64(revenueOrders))).Round(2)
	}
	for _, ps := range products {
		report.TopProducts = append(report.TopProducts, *ps)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}
	return report, nil
}

// Inventory summarises current stock. The period only scopes the movement counts.
func (s *ReportService) Inventory(ctx context.Context, period string) (*domain.InventoryReport, error) {
	now := s.now().UTC()
	p := domain.ResolveReportPeriod(period, now)
	rows, err := s.inventoryRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	movements, err := s.inventoryRepo.CountMovementsByType(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	report := &domain.InventoryReport{
		Period:         p,
		StockValue:     decimal.Zero,
		LowStock:       []domain.StockAlert{},
		ExpiringSoon:   []domain.StockAlert{},
		ByWarehouse:    []domain.WarehouseStock{},
		MovementCounts: movements,
	}
	products := map[uuid.UUID]struct{}{}
	warehouses := map[uuid.UUID]*domain.WarehouseStock{}
	var warehouseOrder []uuid.UUID
	expiryCutoff := now.AddDate(0, 0, expiringSoonDays)

	for i := range rows {
		inv := &rows[i]
		report.TotalRows++
		report.TotalQuantity += inv.Quantity
		report.TotalReserved += inv.ReservedQuantity
		products[inv.ProductID] = struct{}{}

		ws, ok := warehouses[inv.WarehouseID]
		if !ok {
			ws = &domain.WarehouseStock{WarehouseID: inv.WarehouseID}
			if inv.Warehouse != nil {
				ws.WarehouseName = inv.Warehouse.Name
			}
			warehouses[inv.WarehouseID] = ws
			warehouseOrder = append(warehouseOrder, inv.WarehouseID)
		}
		ws.Rows++
		ws.Quantity += inv.Quantity
		ws.Reserved += inv.ReservedQuantity

		if inv.Product != nil {
			report.StockValue = report.StockValue.Add(inv.Product.CostPrice.Mul(decimal.NewFromFloat(inv.Quantity)))
			if inv.Quantity <= inv.Product.ReorderPoint {
				report.LowStock = append(report.LowStock, stockAlert(inv))
			}
		}
		if inv.ExpiryDate != nil && inv.Quantity > 0 && inv.ExpiryDate.Before(expiryCutoff) {
			report.ExpiringSoon = append(report.ExpiringSoon, stockAlert(inv))
		}
	}

	report.TotalProducts = len(products)
	report.StockValue = report.StockValue.Round(2)
	for _, id := range warehouseOrder {
		report.ByWarehouse = append(report.ByWarehouse, *warehouses[id])
	}
	return report, nil
}

// Production compares planned and actual output of batches created in the period
func (s *ReportService) Production(ctx context.Context, period string) (*domain.ProductionReport, error) {
	p := domain.ResolveReportPeriod(period, s.now())
	productions, err := s.productionRepo.ListCreatedBetween(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load productions: %w", err)
	}

	report := &domain.ProductionReport{Period: p, ByStatus: map[string]int{}}
	completed := 0
	var completedPlanned float64
	for _, prod := range productions {
		report.Batches++
		report.ByStatus[string(prod.Status)]++
		report.PlannedQuantity += prod.PlannedQuantity
		if prod.ActualQuantity != nil {
			report.ActualQuantity += *prod.ActualQuantity
		}
		if prod.Status == domain.ProductionCompleted {
			completed++
			completedPlanned += prod.PlannedQuantity
		}
	}
	report.CompletionRate = ratio(float64(completed), float64(report.Batches))
	report.YieldRate = ratio(report.ActualQuantity, completedPlanned)
	return report, nil
}

// Deliveries reports per-status counts and the share delivered on or before the scheduled day
func (s *ReportService) Deliveries(ctx context.Context, period string) (*domain.DeliveryReport, error) {
	p := domain.ResolveReportPeriod(period, s.now())
	deliveries, err := s.deliveryRepo.ListCreatedBetween(ctx, p.Start, p.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries: %w", err)
	}

	report := &domain.DeliveryReport{Period: p, ByStatus: map[string]int{}}
	closed := 0
	for _, d := range deliveries {
		report.Deliveries++
		report.ByStatus[string(d.Status)]++
		switch d.Status {
		case domain.DeliveryDelivered:
			closed++
			if d.ScheduledDate == nil || d.DeliveredAt == nil || !d.DeliveredAt.After(endOfDay(*d.ScheduledDate)) {
				report.OnTime++
			} else {
				report.Late++
			}
		case domain.DeliveryFailed, domain.DeliveryReturned:
			closed++
		}
	}
	report.OnTimeRate = ratio(float64(report.OnTime), float64(report.OnTime+report.Late))
	report.SuccessRate = ratio(float64(report.OnTime+report.Late), float64(closed))
	return report, nil
}

// Dashboard returns today's headline numbers for userID
func (s *ReportService) Dashboard(ctx context.Context, userID uuid.UUID) (*domain.DashboardReport, error) {
	now := s.now().UTC()
	start, end, _ := domain.DateRangeToday.Bounds(now)

	orders, err := s.orderRepo.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	report := &domain.DashboardReport{Date: start.Format("2006-01-02"), RevenueToday: decimal.Zero}
	for _, order := range orders {
		report.OrdersToday++
		if countsAsRevenue(order.Status) {
			report.RevenueToday = report.RevenueToday.Add(order.TotalAmount)
		}
	}

	if report.PendingOrders, err = s.orderRepo.CountByStatus(ctx, domain.OrderPending, domain.OrderConfirmed); err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if report.ActiveProductions, err = s.productionRepo.CountByStatus(ctx, domain.ProductionInProgress); err != nil {
		return nil, fmt.Errorf("failed to count productions: %w", err)
	}
	if report.DeliveriesToday, err = s.deliveryRepo.CountScheduledBetween(ctx, start, end); err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}
	lowStock, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock: %w", err)
	}
	report.LowStockCount = len(lowStock)
	if userID != uuid.Nil {
		if report.UnreadNotifications, err = s.notificationRepo.CountUnread(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to count notifications: %w", err)
		}
	}
	return report, nil
}

// ExportSales renders the sales report as an xlsx workbook with a daily sheet and a
// top products sheet
func (s *ReportService) ExportSales(ctx context.Context, period string) (*excelize.File, string, error) {
	report, err := s.Sales(ctx, period)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F3E5D0"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#8D6E63", Style: 1},
		},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	daily := "Daily sales"
	f.SetSheetName("Sheet1", daily)
	writeHeader(f, daily, headerStyle, "Date", "Orders", "Revenue")
	row := 2
	for _, b := range report.Daily {
		f.SetCellValue(daily, fmt.Sprintf("A%d", row), b.Date)
		f.SetCellValue(daily, fmt.Sprintf("B%d", row), b.Orders)
		f.SetCellValue(daily, fmt.Sprintf("C%d", row), b.Revenue.InexactFloat64())
		row++
	}
	f.SetCellValue(daily, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(daily, fmt.Sprintf("B%d", row), report.OrderCount)
	f.SetCellValue(daily, fmt.Sprintf("C%d", row), report.Revenue.InexactFloat64())
	f.SetCellStyle(daily, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), totalStyle)
	f.SetColWidth(daily, "A", "A", 14)
	f.SetColWidth(daily, "C", "C", 14)

	top := "Top products"
	if _, err := f.NewSheet(top); err != nil {
		return nil, "", fmt.Errorf("failed to add sheet: %w", err)
	}
	writeHeader(f, top, headerStyle, "SKU", "Product", "Quantity", "Revenue")
	for i, ps := range report.TopProducts {
		r := i + 2
		f.SetCellValue(top, fmt.Sprintf("A%d", r), ps.SKU)
		f.SetCellValue(top, fmt.Sprintf("B%d", r), ps.Name)
		f.SetCellValue(top, fmt.Sprintf("C%d", r), ps.Quantity)
		f.SetCellValue(top, fmt.Sprintf("D%d", r), ps.Revenue.InexactFloat64())
	}
	f.SetColWidth(top, "B", "B", 32)

	filename := fmt.Sprintf("sales_%s_%s.xlsx", report.Period.Name, s.now().UTC().Format("20060102"))
	s.logger.Info("sales report exported",
		zap.String("period", report.Period.Name),
		zap.Int("orders", report.OrderCount),
	)
	return f, filename, nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers ...string) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

// dailyBuckets returns one empty bucket per day of the period. Unbounded periods
// get no daily breakdown.
func dailyBuckets(p domain.ReportPeriod) []domain.DailyBucket {
	if p.Start.IsZero() {
		return []domain.DailyBucket{}
	}
	buckets := make([]domain.DailyBucket, 0, p.Days())
	for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
		buckets = append(buckets, domain.DailyBucket{Date: d.Format("2006-01-02"), Revenue: decimal.Zero})
	}
	return buckets
}

func countsAsRevenue(status domain.OrderStatus) bool {
	return status != domain.OrderCancelled && status != domain.OrderReturned
}

func stockAlert(inv *domain.Inventory) domain.StockAlert {
	alert := domain.StockAlert{
		InventoryID: inv.ID,
		ProductID:   inv.ProductID,
		WarehouseID: inv.WarehouseID,
		Quantity:    inv.Quantity,
		Available:   inv.Available(),
		ExpiryDate:  inv.ExpiryDate,
	}
	if inv.Product != nil {
		alert.ProductName = inv.Product.Name
		alert.SKU = inv.Product.SKU
		alert.ReorderPoint = inv.Product.ReorderPoint
	}
	if inv.Warehouse != nil {
		alert.WarehouseName = inv.Warehouse.Name
	}
	return alert
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// ratio returns part/whole rounded to four decimals, zero when whole is zero
func ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(int64(part/whole*10000+0.5)) / 10000
}
