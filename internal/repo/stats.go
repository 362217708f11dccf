package repo

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/game_store/internal/models"
)

type TopProduct struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Sold        int64   `json:"sold"`
	Revenue     float64 `json:"revenue"`
}

type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// PlatformSales counts a multi-platform product under each of its tags.
type PlatformSales struct {
	Units   int64   `json:"units"`
	Revenue float64 `json:"revenue"`
}

type DashboardStats struct {
	TotalProducts        int64                    `json:"total_products"`
	TotalOrders          int64                    `json:"total_orders"`
	TotalUsers           int64                    `json:"total_users"`
	TotalRevenue         float64                  `json:"total_revenue"`
	UnitsSold            int64                    `json:"units_sold"`
	OrdersByStatus       map[string]int           `json:"orders_by_status"`
	RecentOrders         []models.Order           `json:"recent_orders"`
	LowStock             []StockLevel             `json:"low_stock"`
	TopProducts          []TopProduct             `json:"top_products"`
	PlatformDistribution map[string]int           `json:"platform_distribution"`
	MonthlyRevenue       []MonthRevenue           `json:"monthly_revenue"`
	PlatformSales        map[string]PlatformSales `json:"platform_sales"`
}

// Stats builds the dashboard summary. Cancelled orders count in
// OrdersByStatus only.
func (r *GormRepo) Stats(ctx context.Context, lowThreshold, months int) (*DashboardStats, error) {
	db := r.DB.WithContext(ctx)
	s := &DashboardStats{OrdersByStatus: map[string]int{}}

	if err := db.Model(&models.Product{}).Count(&s.TotalProducts).Error; err != nil {
		return nil, mapErr(err)
	}
	if err := db.Model(&models.Order{}).Count(&s.TotalOrders).Error; err != nil {
		return nil, mapErr(err)
	}
	if err := db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, mapErr(err)
	}

	var orders []models.Order
	if err := db.Select("id", "status", "total", "created_at").Find(&orders).Error; err != nil {
		return nil, mapErr(err)
	}
	revenue := decimal.Zero
	byMonth := map[string]decimal.Decimal{}
	countByMonth := map[string]int{}
	for _, o := range orders {
		s.OrdersByStatus[string(o.Status)]++
		if o.Status == models.StatusCancelled {
			continue
		}
		amt := decimal.NewFromFloat(o.Total)
		revenue = revenue.Add(amt)
		m := o.CreatedAt.UTC().Format("2006-01")
		byMonth[m] = byMonth[m].Add(amt)
		countByMonth[m]++
	}
	s.TotalRevenue = revenue.Round(2).InexactFloat64()
	s.MonthlyRevenue = monthlySeries(r.now(), months, byMonth, countByMonth)

	if err := db.Preload("Items").Order("created_at DESC, id DESC").Limit(5).Find(&s.RecentOrders).Error; err != nil {
		return nil, mapErr(err)
	}

	low, err := r.LowStock(ctx, lowThreshold)
	if err != nil {
		return nil, err
	}
	s.LowStock = low

	sales, err := r.productSales(ctx)
	if err != nil {
		return nil, err
	}
	s.TopProducts = sales
	if len(sales) > 5 {
		s.TopProducts = sales[:5]
	}
	for _, ps := range sales {
		s.UnitsSold += ps.Sold
	}
	if s.PlatformSales, err = r.platformSales(ctx, sales); err != nil {
		return nil, err
	}

	if s.PlatformDistribution, err = r.PlatformCounts(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// productSales sums non-cancelled order lines per product, best sellers first.
func (r *GormRepo) productSales(ctx context.Context) ([]TopProduct, error) {
	var rows []TopProduct
	err := r.DB.WithContext(ctx).Table("order_items").
		Select("order_items.product_id AS product_id, MAX(order_items.product_name) AS product_name, "+
			"SUM(order_items.quantity) AS sold, SUM(order_items.quantity * order_items.unit_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", models.StatusCancelled).
		Group("order_items.product_id").
		Order("sold DESC, product_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, mapErr(err)
	}
	for i := range rows {
		rows[i].Revenue = decimal.NewFromFloat(rows[i].Revenue).Round(2).InexactFloat64()
	}
	return rows, nil
}

// platformSales spreads product sales over the products' current platform
// tags. Sales of deleted products are not attributed.
func (r *GormRepo) platformSales(ctx context.Context, sales []TopProduct) (map[string]PlatformSales, error) {
	out := map[string]PlatformSales{}
	if len(sales) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(sales))
	for _, ps := range sales {
		ids = append(ids, ps.ProductID)
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Select("id", "platform").Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, mapErr(err)
	}
	tags := make(map[uint][]string, len(items))
	for _, p := range items {
		tags[p.ID] = p.Platforms
	}

	revenue := map[string]decimal.Decimal{}
	for _, ps := range sales {
		for _, tag := range tags[ps.ProductID] {
			cur := out[tag]
			cur.Units += ps.Sold
			out[tag] = cur
			revenue[tag] = revenue[tag].Add(decimal.NewFromFloat(ps.Revenue))
		}
	}
	for tag, v := range revenue {
		cur := out[tag]
		cur.Revenue = v.Round(2).InexactFloat64()
		out[tag] = cur
	}
	return out, nil
}

func monthlySeries(now time.Time, months int, byMonth map[string]decimal.Decimal, counts map[string]int) []MonthRevenue {
	if months <= 0 {
		months = 12
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	out := make([]MonthRevenue, 0, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0).Format("2006-01")
		out = append(out, MonthRevenue{Month: m, Revenue: byMonth[m].Round(2).InexactFloat64(), Orders: counts[m]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
