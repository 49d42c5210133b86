package repository

import (
	"sort"
	"time"

	"bodega-pos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(lowStockThreshold int) (*DashboardStats, error)
}

// StockMovementData is one day of the movement chart
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

// GetStockMovement sums purchased (inbound) and sold (outbound) units per day.
func (r *dashboardRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	days := make(map[string]*StockMovementData)

	collect := func(lineTable, headerTable, fk string, add func(*StockMovementData, int)) error {
		rows, err := r.db.Table(lineTable).
			Select("DATE("+headerTable+".date) AS day, COALESCE(SUM("+lineTable+".quantity), 0)").
			Joins("JOIN "+headerTable+" ON "+headerTable+".id = "+lineTable+"."+fk).
			Where(headerTable+".date BETWEEN ? AND ?", startDate, endDate).
			Group("DATE(" + headerTable + ".date)").
			Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var day string
			var qty int
			if err := rows.Scan(&day, &qty); err != nil {
				return err
			}
			// postgres hands back a timestamp, sqlite a plain date
			if len(day) > 10 {
				day = day[:10]
			}
			d, ok := days[day]
			if !ok {
				d = &StockMovementData{Date: day}
				days[day] = d
			}
			add(d, qty)
		}
		return rows.Err()
	}

	if err := collect("purchase_lines", "purchase_headers", "purchase_header_id", func(d *StockMovementData, q int) { d.Inbound += q }); err != nil {
		return nil, err
	}
	if err := collect("sale_lines", "sale_headers", "sale_header_id", func(d *StockMovementData, q int) { d.Outbound += q }); err != nil {
		return nil, err
	}

	results := make([]StockMovementData, 0, len(days))
	for _, d := range days {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (r *dashboardRepo) GetDashboardStats(lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("stock < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Valuation at purchase price
	row := r.db.Model(&model.Product{}).Select("COALESCE(SUM(stock * purchase_price), 0)").Row()
	if err := row.Scan(&stats.TotalValuation); err != nil {
		return nil, err
	}
	return &stats, nil
}
