package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/game_store/internal/domain"
	"github.com/Skotchmaster/game_store/internal/repo"
)

const statsMonths = 6

type ReportService struct {
	Repo              *repo.GormRepo
	LowStockThreshold int
}

func (s *ReportService) Stats(ctx context.Context) (*repo.DashboardStats, error) {
	return s.Repo.Stats(ctx, s.LowStockThreshold, statsMonths)
}

func (s *ReportService) ListClients(ctx context.Context, offset, limit int) (int64, []repo.Client, error) {
	return s.Repo.ListClients(ctx, offset, limit)
}

func (s *ReportService) GetClient(ctx context.Context, userID int64) (*repo.ClientDetail, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.Repo.GetClient(ctx, userID)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func (s *ReportService) ExportOrders(ctx context.Context, w io.Writer) error {
	_, orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{})
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, it.ProductName+" x"+strconv.Itoa(it.Quantity))
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatInt(o.UserID, 10),
			string(o.Status),
			money(o.Total),
			o.Buyer.Name,
			o.Buyer.Phone,
			o.Buyer.Email,
			o.Buyer.Address,
			strings.Join(items, "; "),
			o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(w, []string{"order_id", "user_id", "status", "total", "name", "phone", "email", "address", "items", "created_at"}, rows)
}

func (s *ReportService) ExportClients(ctx context.Context, w io.Writer) error {
	users, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return err
	}
	stats, err := s.Repo.UserOrderStats(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		st := stats[u.ID]
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.DisplayName(),
			u.Phone,
			u.Email,
			u.Address,
			strconv.FormatInt(st.OrderCount, 10),
			money(st.Spent),
			u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeCSV(w, []string{"user_id", "username", "name", "phone", "email", "address", "orders", "spent", "joined_at"}, rows)
}

func (s *ReportService) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.Repo.AllProducts(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Name,
			strings.Join(p.Platforms, ", "),
			money(p.Price),
			strconv.Itoa(p.Stock),
			p.Description,
		})
	}
	return writeCSV(w, []string{"product_id", "name", "platforms", "price", "stock", "description"}, rows)
}
