// Package mockapi is an in-memory stand-in for the POS backend. It serves
// the same envelope API the real backend does and is used for local
// development and by the gateway tests. Nothing here persists.
package mockapi

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-pos-terminal/internal/model"
)

type account struct {
	model.User
	passwordHash []byte
}

type saleRecord struct {
	model.Sale
	ID        uuid.UUID
	CreatedAt time.Time
}

type Server struct {
	app *fiber.App
	hub *Hub

	mu       sync.Mutex
	products map[string]*model.Product
	order    []string // barcode listing order
	users    []*account
	sales    []saleRecord
	audit    []model.AuditEntry
	cash     model.CashStatus
}

func New() *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "POS Mock Backend v1.0",
			DisableStartupMessage: true,
		}),
		hub:      NewHub(),
		products: make(map[string]*model.Product),
	}
	go s.hub.Run()

	s.seed()
	s.routes()
	return s
}

func (s *Server) seed() {
	s.addUser("admin", "admin123", "Master Administrator", model.RoleAdmin)
	s.addUser("cashier", "cashier123", "Front Cashier", model.RoleCashier)

	for _, p := range []model.Product{
		{Barcode: "8690000000011", Name: "Filter Coffee 250g", Price: 89.90, Quantity: 24, KDV: model.DefaultKDV, MinStockLevel: 5},
		{Barcode: "8690000000028", Name: "Sparkling Water 6x200ml", Price: 34.50, Quantity: 60, KDV: model.DefaultKDV, MinStockLevel: 10},
		{Barcode: "8690000000035", Name: "Dark Chocolate 80g", Price: 42.00, Quantity: 3, KDV: model.DefaultKDV, MinStockLevel: 5},
	} {
		copied := p
		s.products[p.Barcode] = &copied
		s.order = append(s.order, p.Barcode)
	}
}

func (s *Server) addUser(username, password, fullName, role string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	s.users = append(s.users, &account{
		User: model.User{
			ID:       uuid.New(),
			Username: username,
			FullName: fullName,
			Role:     role,
			IsActive: true,
		},
		passwordHash: hash,
	})
}

func (s *Server) findUser(username string) *account {
	for _, u := range s.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *Server) findUserByID(id uuid.UUID) *account {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// ok wraps a payload in the success envelope.
func ok(c *fiber.Ctx, payload fiber.Map) error {
	body := fiber.Map{"status": "success"}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(body)
}

func fail(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": msg})
}

// requireAuth resolves the bearer value (a user id) to an account.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || authHeader[:len(prefix)] != prefix {
		return fail(c, 401, "missing authorization token")
	}

	id, err := uuid.Parse(authHeader[len(prefix):])
	if err != nil {
		return fail(c, 401, "invalid authorization token")
	}

	s.mu.Lock()
	user := s.findUserByID(id)
	s.mu.Unlock()
	if user == nil || !user.IsActive {
		return fail(c, 401, "user not found")
	}

	c.Locals("user", user)
	return c.Next()
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	user := c.Locals("user").(*account)
	if !user.IsAdmin() {
		return fail(c, 403, "admin role required")
	}
	return c.Next()
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New())

	api := s.app.Group("/api")
	api.Post("/auth/login", s.handleLogin)

	protected := api.Group("", s.requireAuth)
	protected.Get("/products", s.handleListProducts)
	protected.Post("/products", s.handleCreateProduct)
	protected.Post("/stock/update", s.handleStockUpdate)
	protected.Post("/stock/add", s.handleStockAdd)
	protected.Post("/sale", s.handleSale)
	protected.Get("/cash/status", s.handleCashStatus)
	protected.Post("/cash/open", s.handleCashOpen)
	protected.Post("/cash/close", s.handleCashClose)
	protected.Get("/dashboard", s.handleDashboard)
	protected.Get("/reports/sales", s.handleSalesReport)

	admin := protected.Group("/admin", s.requireAdmin)
	admin.Get("/users", s.handleListUsers)
	admin.Post("/users", s.handleCreateUser)
	admin.Get("/audit", s.handleAudit)
	admin.Post("/backup", s.handleBackup)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	s.app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		s.hub.Register <- c
		defer func() { s.hub.Unregister <- c }()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}

func (s *Server) recordAudit(user *account, action, detail string) {
	s.audit = append(s.audit, model.AuditEntry{
		ID:        uuid.New(),
		UserID:    user.ID,
		UserName:  user.FullName,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "invalid JSON")
	}
	if req.Username == "" || req.Password == "" {
		return fail(c, 400, "username and password are required")
	}

	s.mu.Lock()
	user := s.findUser(req.Username)
	s.mu.Unlock()
	if user == nil || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(req.Password)) != nil {
		return fail(c, 401, "invalid username or password")
	}
	if !user.IsActive {
		return fail(c, 401, "user account is inactive")
	}

	return ok(c, fiber.Map{"user": user.User})
}

func (s *Server) handleListProducts(c *fiber.Ctx) error {
	s.mu.Lock()
	products := make([]model.Product, 0, len(s.order))
	for _, barcode := range s.order {
		products = append(products, *s.products[barcode])
	}
	s.mu.Unlock()

	return ok(c, fiber.Map{"products": products})
}

func (s *Server) handleCreateProduct(c *fiber.Ctx) error {
	var p model.Product
	if err := c.BodyParser(&p); err != nil {
		return fail(c, 400, "invalid JSON")
	}
	if p.Barcode == "" || p.Name == "" || p.Price < 0 {
		return fail(c, 400, "barcode, name and a non-negative price are required")
	}

	s.mu.Lock()
	if _, exists := s.products[p.Barcode]; exists {
		s.mu.Unlock()
		return fail(c, 400, "barcode already exists")
	}
	if p.KDV == 0 {
		p.KDV = model.DefaultKDV
	}
	if p.MinStockLevel == 0 {
		p.MinStockLevel = model.DefaultMinStockLevel
	}
	s.products[p.Barcode] = &p
	s.order = append(s.order, p.Barcode)
	user := c.Locals("user").(*account)
	s.recordAudit(user, "product_created", fmt.Sprintf("%s created product '%s'", user.FullName, p.Name))
	s.mu.Unlock()

	return ok(c, fiber.Map{"product": p})
}

func (s *Server) handleStockUpdate(c *fiber.Ctx) error {
	return s.mutateStock(c, func(p *model.Product, qty int) int { return qty })
}

func (s *Server) handleStockAdd(c *fiber.Ctx) error {
	return s.mutateStock(c, func(p *model.Product, qty int) int { return p.Quantity + qty })
}

func (s *Server) mutateStock(c *fiber.Ctx, apply func(p *model.Product, qty int) int) error {
	var req struct {
		Barcode  string `json:"barcode"`
		Quantity int    `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "invalid JSON")
	}

	s.mu.Lock()
	p, exists := s.products[req.Barcode]
	if !exists {
		s.mu.Unlock()
		return fail(c, 404, "product not found")
	}
	newStock := apply(p, req.Quantity)
	if newStock < 0 {
		s.mu.Unlock()
		return fail(c, 400, "stock cannot go negative")
	}
	p.Quantity = newStock
	user := c.Locals("user").(*account)
	s.recordAudit(user, "stock_changed", fmt.Sprintf("%s set '%s' stock to %d", user.FullName, p.Name, newStock))
	barcode, name := p.Barcode, p.Name
	s.mu.Unlock()

	s.hub.BroadcastStockUpdate(barcode, newStock, fmt.Sprintf("stock of '%s' is now %d", name, newStock))
	return ok(c, fiber.Map{})
}

func (s *Server) handleSale(c *fiber.Ctx) error {
	var sale model.Sale
	if err := c.BodyParser(&sale); err != nil {
		return fail(c, 400, "invalid JSON")
	}
	if len(sale.Items) == 0 {
		return fail(c, 400, "sale must have at least one item")
	}
	if !sale.PaymentMethod.Valid() {
		return fail(c, 400, "unsupported payment method")
	}

	type broadcastItem struct {
		barcode string
		name    string
		stock   int
	}
	var updates []broadcastItem

	s.mu.Lock()
	// Check all lines before committing any of them.
	for _, item := range sale.Items {
		p, exists := s.products[item.Barcode]
		if !exists {
			s.mu.Unlock()
			return fail(c, 404, fmt.Sprintf("product %s not found", item.Barcode))
		}
		if p.Quantity < item.Quantity {
			s.mu.Unlock()
			return fail(c, 400, fmt.Sprintf("insufficient stock for '%s'", p.Name))
		}
	}
	for _, item := range sale.Items {
		p := s.products[item.Barcode]
		p.Quantity -= item.Quantity
		updates = append(updates, broadcastItem{barcode: p.Barcode, name: p.Name, stock: p.Quantity})
	}

	record := saleRecord{Sale: sale, ID: uuid.New(), CreatedAt: time.Now()}
	s.sales = append(s.sales, record)
	if sale.PaymentMethod == model.PaymentCash && s.cash.Open {
		s.cash.CurrentAmount += sale.Total
	}
	user := c.Locals("user").(*account)
	s.recordAudit(user, "sale_completed", fmt.Sprintf("%s completed sale %s (%.2f)", user.FullName, record.ID, sale.Total))
	s.mu.Unlock()

	for _, u := range updates {
		s.hub.BroadcastStockUpdate(u.barcode, u.stock, fmt.Sprintf("stock of '%s' is now %d", u.name, u.stock))
	}

	return ok(c, fiber.Map{"sale_id": record.ID.String()})
}

func (s *Server) handleCashStatus(c *fiber.Ctx) error {
	s.mu.Lock()
	cash := s.cash
	s.mu.Unlock()
	return ok(c, fiber.Map{"cash": cash})
}

func (s *Server) handleCashOpen(c *fiber.Ctx) error {
	var req model.CashOpenRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "invalid JSON")
	}
	if req.Amount < 0 {
		return fail(c, 400, "opening amount cannot be negative")
	}

	user := c.Locals("user").(*account)
	now := time.Now()

	s.mu.Lock()
	if s.cash.Open {
		s.mu.Unlock()
		return fail(c, 400, "cash register is already open")
	}
	s.cash = model.CashStatus{
		Open:          true,
		OpenedBy:      user.FullName,
		OpenedAt:      &now,
		OpeningAmount: req.Amount,
		CurrentAmount: req.Amount,
	}
	s.recordAudit(user, "cash_opened", fmt.Sprintf("%s opened the register with %.2f", user.FullName, req.Amount))
	s.mu.Unlock()

	return ok(c, fiber.Map{})
}

func (s *Server) handleCashClose(c *fiber.Ctx) error {
	var req model.CashCloseRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "invalid JSON")
	}

	user := c.Locals("user").(*account)

	s.mu.Lock()
	if !s.cash.Open {
		s.mu.Unlock()
		return fail(c, 400, "cash register is not open")
	}
	s.cash = model.CashStatus{}
	s.recordAudit(user, "cash_closed", fmt.Sprintf("%s closed the register, counted %.2f", user.FullName, req.CountedAmount))
	s.mu.Unlock()

	return ok(c, fiber.Map{})
}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	today := time.Now().Format("2006-01-02")

	s.mu.Lock()
	stats := model.DashboardStats{TotalProducts: int64(len(s.products))}
	for _, p := range s.products {
		if p.LowStock() {
			stats.LowStockCount++
		}
	}
	for _, sale := range s.sales {
		if sale.CreatedAt.Format("2006-01-02") == today {
			stats.TodaySales++
			stats.TodayRevenue += sale.Total
		}
	}
	s.mu.Unlock()

	return ok(c, fiber.Map{"stats": stats})
}

func (s *Server) handleSalesReport(c *fiber.Ctx) error {
	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		return fail(c, 400, "invalid start_date")
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		return fail(c, 400, "invalid end_date")
	}
	// Inclusive range.
	end = end.AddDate(0, 0, 1)

	byDate := make(map[string]*model.SalesReportRow)
	var dates []string

	s.mu.Lock()
	for _, sale := range s.sales {
		if sale.CreatedAt.Before(start) || !sale.CreatedAt.Before(end) {
			continue
		}
		date := sale.CreatedAt.Format("2006-01-02")
		row, exists := byDate[date]
		if !exists {
			row = &model.SalesReportRow{Date: date}
			byDate[date] = row
			dates = append(dates, date)
		}
		row.SaleCount++
		row.Revenue += sale.Total
	}
	s.mu.Unlock()

	rows := make([]model.SalesReportRow, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, *byDate[date])
	}
	return ok(c, fiber.Map{"rows": rows})
}

func (s *Server) handleListUsers(c *fiber.Ctx) error {
	s.mu.Lock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.User)
	}
	s.mu.Unlock()

	return ok(c, fiber.Map{"users": users})
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "invalid JSON")
	}
	if req.Username == "" || len(req.Password) < 6 || req.FullName == "" {
		return fail(c, 400, "username, full_name and a password of at least 6 characters are required")
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleUser && req.Role != model.RoleCashier {
		return fail(c, 400, "unknown role")
	}

	s.mu.Lock()
	if s.findUser(req.Username) != nil {
		s.mu.Unlock()
		return fail(c, 400, "username already exists")
	}
	s.addUser(req.Username, req.Password, req.FullName, req.Role)
	creator := c.Locals("user").(*account)
	s.recordAudit(creator, "user_created", fmt.Sprintf("%s created user '%s'", creator.FullName, req.Username))
	s.mu.Unlock()

	return ok(c, fiber.Map{})
}

func (s *Server) handleAudit(c *fiber.Ctx) error {
	s.mu.Lock()
	entries := make([]model.AuditEntry, len(s.audit))
	copy(entries, s.audit)
	s.mu.Unlock()

	return ok(c, fiber.Map{"entries": entries})
}

func (s *Server) handleBackup(c *fiber.Ctx) error {
	user := c.Locals("user").(*account)
	file := fmt.Sprintf("backup-%s.json", time.Now().Format("20060102-150405"))

	s.mu.Lock()
	s.recordAudit(user, "backup_created", fmt.Sprintf("%s triggered backup %s", user.FullName, file))
	s.mu.Unlock()

	return ok(c, fiber.Map{"file": file})
}

// Listen serves on addr, blocking.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Serve serves on an existing listener; tests use this with a loopback
// listener on a random port.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
