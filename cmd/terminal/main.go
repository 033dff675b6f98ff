package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/config"
	"go-pos-terminal/internal/controller"
	"go-pos-terminal/internal/gateway"
	"go-pos-terminal/internal/model"
	"go-pos-terminal/internal/store"
	"go-pos-terminal/internal/wsclient"
	"go-pos-terminal/pkg/logger"
	"go-pos-terminal/pkg/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := config.Load()
	logger.Init(logger.Config{Mode: cfg.LogMode, FileEnable: cfg.LogFileEnable, Filename: cfg.LogFilename})

	storage, err := session.Open(cfg.SessionPath, []byte(cfg.SessionSecret))
	if err != nil {
		zap.S().Fatalw("failed to open session storage", "err", err)
	}
	defer storage.Close()

	events := EventBus.New()

	// The store supplies the bearer value, so build it before the client and
	// hand the client in afterwards via the token func closure.
	var st *store.Store
	client := gateway.NewClient(cfg.APIBaseURL, func() string { return st.BearerToken() })
	st = store.New(client, storage, events)

	ctl := controller.New(st.Session, events)
	dispatcher := controller.NewDispatcher(st, ctl, client, events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wireLoaders(ctl, st, client, events)
	subscribeRenderer(events)

	listener := wsclient.NewListener(cfg.WSURL, st)
	go listener.Run(ctx)

	if st.Restore() {
		zap.S().Infow("session restored", "user", st.Session().User.FullName)
		ctl.OnLogin(ctx)
	} else {
		fmt.Println("Not logged in. Use: login <username> <password>")
	}

	go repl(ctx, dispatcher)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("terminal shutting down")
}

// wireLoaders binds each tab to its backend fetch. Loaded data goes out on
// the bus for the renderer; failures surface as notifications.
func wireLoaders(ctl *controller.Controller, st *store.Store, client *gateway.Client, events EventBus.Bus) {
	ctl.SetLoader(controller.TabDashboard, func(ctx context.Context) error {
		stats, err := client.Dashboard(ctx)
		if err != nil {
			return err
		}
		events.Publish(bus.TopicDashboardLoaded, stats)
		return nil
	})
	ctl.SetLoader(controller.TabSales, st.LoadProducts)
	ctl.SetLoader(controller.TabProducts, st.LoadProducts)
	ctl.SetLoader(controller.TabInventory, st.LoadProducts)
	ctl.SetLoader(controller.TabMobileStock, st.LoadProducts)
	ctl.SetLoader(controller.TabReports, func(ctx context.Context) error {
		// Default view is the last 7 days.
		rows, err := client.SalesReport(ctx, time.Now().AddDate(0, 0, -7), time.Now())
		if err != nil {
			return err
		}
		events.Publish(bus.TopicReportLoaded, rows)
		return nil
	})
	ctl.SetLoader(controller.TabCash, func(ctx context.Context) error {
		status, err := client.CashStatus(ctx)
		if err != nil {
			return err
		}
		events.Publish(bus.TopicCashStatus, status)
		return nil
	})
	ctl.SetAdminLoader(controller.AdminTabUsers, func(ctx context.Context) error {
		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}
		events.Publish(bus.TopicUsersLoaded, users)
		return nil
	})
	ctl.SetAdminLoader(controller.AdminTabAudit, func(ctx context.Context) error {
		entries, err := client.AuditLogs(ctx)
		if err != nil {
			return err
		}
		events.Publish(bus.TopicAuditLoaded, entries)
		return nil
	})
}

// subscribeRenderer is the default view collaborator: it prints
// notifications and state changes. A real renderer would subscribe to the
// same topics.
func subscribeRenderer(events EventBus.Bus) {
	events.Subscribe(bus.TopicNotify, func(level, message string) {
		fmt.Printf("[%s] %s\n", strings.ToUpper(level), message)
	})
	events.Subscribe(bus.TopicTabChanged, func(tab string) {
		fmt.Println("-- tab:", tab)
	})
	events.Subscribe(bus.TopicDashboardLoaded, func(stats *model.DashboardStats) {
		fmt.Printf("-- dashboard: %d products, %d low on stock, %d sales today (%.2f)\n",
			stats.TotalProducts, stats.LowStockCount, stats.TodaySales, stats.TodayRevenue)
	})
	events.Subscribe(bus.TopicCashStatus, func(status *model.CashStatus) {
		if status.Open {
			fmt.Printf("-- cash: open by %s, current %.2f\n", status.OpenedBy, status.CurrentAmount)
		} else {
			fmt.Println("-- cash: closed")
		}
	})
	events.Subscribe(bus.TopicReportLoaded, func(rows []model.SalesReportRow) {
		for _, row := range rows {
			fmt.Printf("-- report: %s  %d sales  %.2f\n", row.Date, row.SaleCount, row.Revenue)
		}
	})
	events.Subscribe(bus.TopicUsersLoaded, func(users []model.User) {
		for _, u := range users {
			fmt.Printf("-- user: %s (%s) %s\n", u.Username, u.Role, u.FullName)
		}
	})
	events.Subscribe(bus.TopicAuditLoaded, func(entries []model.AuditEntry) {
		for _, e := range entries {
			fmt.Printf("-- audit: %s %s\n", e.CreatedAt.Format("15:04:05"), e.Detail)
		}
	})
}

// repl reads "action arg..." lines and feeds the dispatch table. This stands
// in for the UI event layer during development.
func repl(ctx context.Context, dispatcher *controller.Dispatcher) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := dispatcher.Dispatch(ctx, fields[0], fields[1:]...); err != nil {
			// Already surfaced via the notify topic.
			continue
		}
	}
}
