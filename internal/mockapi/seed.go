package mockapi

import (
	"net/http/httptest"
	"sort"

	"github.com/shopspring/decimal"

	"pcshop-storefront/internal/models"
)

// Demo accounts created by Seed.
const (
	DemoCustomerEmail = "customer@pcshop.test"
	DemoAdminEmail    = "admin@pcshop.test"
	DemoPassword      = "password123"
)

// Seed loads a small demo catalog and two accounts.
func (s *Server) Seed() error {
	for _, p := range []models.Product{
		{ID: "cpu-r7", Name: "Ryzen 7 7700X", Description: "8-core desktop processor", Price: decimal.RequireFromString("299.99"), ImagePath: "/images/r7.png", Category: "CPU", IsActive: true},
		{ID: "gpu-4070", Name: "GeForce RTX 4070", Description: "12GB graphics card", Price: decimal.RequireFromString("599.00"), ImagePath: "/images/4070.png", Category: "GPU", IsActive: true},
		{ID: "ram-32", Name: "DDR5 32GB Kit", Description: "2x16GB 6000MHz memory", Price: decimal.RequireFromString("109.50"), ImagePath: "/images/ddr5.png", Category: "Memory", IsActive: true},
		{ID: "ssd-2tb", Name: "NVMe SSD 2TB", Description: "PCIe 4.0 solid state drive", Price: decimal.RequireFromString("139.90"), ImagePath: "/images/ssd.png", Category: "Storage", IsActive: true},
		{ID: "case-atx", Name: "Mid Tower Case", Description: "ATX case with mesh front", Price: decimal.RequireFromString("79.00"), ImagePath: "/images/case.png", Category: "Case", IsActive: false},
	} {
		s.AddProduct(p)
	}

	if _, err := s.AddUser("Demo Customer", "12 Market Street", DemoCustomerEmail, DemoPassword, false); err != nil {
		return err
	}
	if _, err := s.AddUser("Demo Admin", "1 Admin Way", DemoAdminEmail, DemoPassword, true); err != nil {
		return err
	}
	return nil
}

// NewHTTPTest starts the fake service on a loopback listener. Callers
// close the returned server.
func NewHTTPTest(cfg Config) (*Server, *httptest.Server) {
	s := New(cfg)
	return s, httptest.NewServer(s.Handler())
}

func sortUsers(users []models.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
}
