package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/EventBus"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/gateway"
	"go-pos-terminal/internal/model"
	"go-pos-terminal/internal/store"
)

// Backend groups the register and admin operations the dispatcher drives
// directly on the API client, bypassing the store.
type Backend interface {
	OpenCash(ctx context.Context, amount float64) error
	CloseCash(ctx context.Context, counted float64, note string) error
	CreateUser(ctx context.Context, req *gateway.CreateUserRequest) error
	TriggerBackup(ctx context.Context) (string, error)
}

// Handler executes one UI action with its string arguments.
type Handler func(ctx context.Context, args []string) error

var ErrUnknownAction = errors.New("unknown action")

// Dispatcher maps UI action identifiers to store/controller methods. The
// view layer only knows action strings; it never calls the core directly.
type Dispatcher struct {
	handlers map[string]Handler
	events   EventBus.Bus
}

func NewDispatcher(st *store.Store, ctl *Controller, backend Backend, events EventBus.Bus) *Dispatcher {
	d := &Dispatcher{events: events}
	d.handlers = map[string]Handler{
		"login": func(ctx context.Context, args []string) error {
			if err := need(args, 2); err != nil {
				return err
			}
			if err := st.Login(ctx, args[0], args[1]); err != nil {
				return err
			}
			ctl.OnLogin(ctx)
			return nil
		},
		"logout": func(ctx context.Context, args []string) error {
			st.Logout()
			ctl.OnLogout()
			return nil
		},

		"cart.add": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			return st.AddToCart(args[0])
		},
		"cart.remove": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			st.RemoveFromCart(args[0])
			return nil
		},
		"cart.increment": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			return st.UpdateQuantity(args[0], 1)
		},
		"cart.decrement": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			return st.UpdateQuantity(args[0], -1)
		},
		"cart.qty": func(ctx context.Context, args []string) error {
			if err := need(args, 2); err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity delta %q", args[1])
			}
			return st.UpdateQuantity(args[0], delta)
		},

		"checkout.cash": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			tendered, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid cash amount %q", args[0])
			}
			// Checkout clears the cart on success, so take the change
			// against the ticket total first.
			change := st.ChangeAmount(tendered)
			saleID, err := st.Checkout(ctx, model.PaymentCash, tendered)
			if err != nil {
				return err
			}
			d.events.Publish(bus.TopicNotify, bus.LevelSuccess,
				fmt.Sprintf("sale %s completed, change %.2f", saleID, change))
			return nil
		},
		"checkout.card": func(ctx context.Context, args []string) error {
			saleID, err := st.Checkout(ctx, model.PaymentCard, 0)
			if err != nil {
				return err
			}
			d.events.Publish(bus.TopicNotify, bus.LevelSuccess, "sale "+saleID+" completed")
			return nil
		},

		"tab.open": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			return ctl.OpenTab(ctx, Tab(args[0]))
		},
		"admin.tab.open": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			return ctl.OpenAdminTab(ctx, AdminTab(args[0]))
		},
		"modal.open": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			ctl.OpenModal(args[0])
			return nil
		},
		"modal.close": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			ctl.CloseModal(args[0])
			return nil
		},

		"cash.open": func(ctx context.Context, args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return backend.OpenCash(ctx, amount)
		},
		"cash.close": func(ctx context.Context, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("expected at least 1 argument")
			}
			counted, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return backend.CloseCash(ctx, counted, strings.Join(args[1:], " "))
		},

		"product.create": func(ctx context.Context, args []string) error {
			if len(args) < 3 {
				return fmt.Errorf("expected at least 3 arguments")
			}
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid price %q", args[1])
			}
			p := &model.Product{
				Barcode: args[0],
				Price:   price,
				Name:    strings.Join(args[2:], " "),
			}
			if err := st.CreateProduct(ctx, p); err != nil {
				return err
			}
			d.events.Publish(bus.TopicNotify, bus.LevelSuccess, "product '"+p.Name+"' created")
			return nil
		},
		"admin.user.create": func(ctx context.Context, args []string) error {
			if len(args) < 4 {
				return fmt.Errorf("expected at least 4 arguments")
			}
			req := &gateway.CreateUserRequest{
				Username: args[0],
				Password: args[1],
				Role:     args[2],
				FullName: strings.Join(args[3:], " "),
			}
			if err := backend.CreateUser(ctx, req); err != nil {
				return err
			}
			d.events.Publish(bus.TopicNotify, bus.LevelSuccess, "user '"+req.Username+"' created")
			return nil
		},
		"admin.backup": func(ctx context.Context, args []string) error {
			file, err := backend.TriggerBackup(ctx)
			if err != nil {
				return err
			}
			d.events.Publish(bus.TopicNotify, bus.LevelSuccess, "backup written to "+file)
			return nil
		},

		"stock.set": func(ctx context.Context, args []string) error {
			if err := need(args, 2); err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return st.SetStock(ctx, args[0], qty)
		},
		"stock.receive": func(ctx context.Context, args []string) error {
			if err := need(args, 2); err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return st.ReceiveStock(ctx, args[0], delta)
		},
	}
	return d
}

// Dispatch runs the handler for action. Failures are surfaced as a
// notification and returned; prior state is untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, args ...string) error {
	handler, ok := d.handlers[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	if err := handler(ctx, args); err != nil {
		d.events.Publish(bus.TopicNotify, bus.LevelError, err.Error())
		return err
	}
	return nil
}

// ScanHandler adapts the dispatcher for a barcode scanner collaborator: the
// device decode callback feeds straight into the sales flow.
func (d *Dispatcher) ScanHandler(ctx context.Context) func(code string) {
	return func(code string) {
		_ = d.Dispatch(ctx, "cart.add", code)
	}
}

func need(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}
