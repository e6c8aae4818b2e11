package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"estampa-fina/internal/model"
	"estampa-fina/internal/repository"
)

const reportTopN = 5

type ReportService interface {
	Generate(from, to time.Time) (*model.Report, error)
	ParseRange(from, to string) (time.Time, time.Time, error)
}

type reportService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

func NewReportService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) ReportService {
	return &reportService{orderRepo: orderRepo, productRepo: productRepo, now: time.Now}
}

// ParseRange reads YYYY-MM-DD bounds. A missing from defaults to the first
// day of the current month and a missing to defaults to today.
func (s *reportService) ParseRange(from, to string) (time.Time, time.Time, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := startOfDay(now)

	var err error
	if from != "" {
		if start, err = time.ParseInLocation(dayLayout, from, now.Location()); err != nil {
			return time.Time{}, time.Time{}, invalid("from must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if end, err = time.ParseInLocation(dayLayout, to, now.Location()); err != nil {
			return time.Time{}, time.Time{}, invalid("to must be YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalid("to is before from")
	}
	return start, end, nil
}

// Generate aggregates completed sales dated from the start of from to the
// last millisecond of to. Cost uses each product's current cost price.
func (s *reportService) Generate(from, to time.Time) (*model.Report, error) {
	start, end := startOfDay(from), endOfDay(to)

	var (
		orders   []model.Order
		products []model.Product
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		orders, err = s.orderRepo.FindByStatusBetween(model.OrderCompleted, start, end)
		return
	})
	g.Go(func() (err error) {
		products, err = s.productRepo.FindAll()
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &model.Report{
		From:         start,
		To:           startOfDay(to),
		TotalRevenue: decimal.Zero,
		TotalCost:    decimal.Zero,
		StockValue:   decimal.Zero,
		SalesCount:   len(orders),
	}

	costs := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		costs[p.ID.String()] = p.CostPrice
		report.StockValue = report.StockValue.Add(p.StockValue())
		if p.LowStock() {
			report.LowStockCount++
		}
	}

	days := map[string]*model.DaySales{}
	byProduct := map[string]*model.ProductRank{}
	byClient := map[string]*model.ClientRank{}

	for _, o := range orders {
		report.TotalRevenue = report.TotalRevenue.Add(o.TotalValue)

		key := o.Date.In(from.Location()).Format(dayLayout)
		d, ok := days[key]
		if !ok {
			d = &model.DaySales{Date: key, Total: decimal.Zero}
			days[key] = d
		}
		d.Total = d.Total.Add(o.TotalValue)
		d.Count++

		clientKey := o.ClientID
		if clientKey == "" {
			clientKey = "name:" + o.CustomerName
		}
		c, ok := byClient[clientKey]
		if !ok {
			c = &model.ClientRank{ClientID: o.ClientID, Name: o.CustomerName, Total: decimal.Zero}
			byClient[clientKey] = c
		}
		c.Total = c.Total.Add(o.TotalValue)
		c.Orders++

		for _, it := range o.Items {
			qty := decimal.NewFromInt(int64(it.Quantity))
			if cost, ok := costs[it.ProductID]; ok {
				report.TotalCost = report.TotalCost.Add(cost.Mul(qty))
			}
			p, ok := byProduct[it.ProductID]
			if !ok {
				p = &model.ProductRank{ProductID: it.ProductID, Name: it.Name, Revenue: decimal.Zero}
				byProduct[it.ProductID] = p
			}
			p.Quantity += it.Quantity
			p.Revenue = p.Revenue.Add(it.Subtotal())
		}
	}

	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCost)
	report.AverageTicket = decimal.Zero
	if report.SalesCount > 0 {
		report.AverageTicket = report.TotalRevenue.Div(decimal.NewFromInt(int64(report.SalesCount))).Round(2)
	}

	report.SalesByDay = make([]model.DaySales, 0, len(days))
	for _, d := range days {
		report.SalesByDay = append(report.SalesByDay, *d)
	}
	slices.SortFunc(report.SalesByDay, func(a, b model.DaySales) int { return cmp.Compare(a.Date, b.Date) })

	report.TopProducts = make([]model.ProductRank, 0, len(byProduct))
	for _, p := range byProduct {
		report.TopProducts = append(report.TopProducts, *p)
	}
	slices.SortFunc(report.TopProducts, func(a, b model.ProductRank) int {
		if a.Quantity != b.Quantity {
			return cmp.Compare(b.Quantity, a.Quantity)
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(report.TopProducts) > reportTopN {
		report.TopProducts = report.TopProducts[:reportTopN]
	}

	report.TopClients = make([]model.ClientRank, 0, len(byClient))
	for _, c := range byClient {
		report.TopClients = append(report.TopClients, *c)
	}
	slices.SortFunc(report.TopClients, func(a, b model.ClientRank) int {
		if n := b.Total.Cmp(a.Total); n != 0 {
			return n
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(report.TopClients) > reportTopN {
		report.TopClients = report.TopClients[:reportTopN]
	}

	return report, nil
}
