package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/cart"
	"pcshop-storefront/internal/catalog"
	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/orders"
	"pcshop-storefront/internal/pricing"
)

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return apperr.InvalidErr("Usage: shopctl " + commands[fs.Name()].usage)
		}
		return apperr.InvalidErr(err.Error())
	}
	return nil
}

func requireArgs(name string, args []string, n int) error {
	if len(args) < n {
		return apperr.InvalidErr("Usage: shopctl " + commands[name].usage)
	}
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	var email string
	if len(args) > 0 {
		email = strings.TrimSpace(args[0])
	} else {
		var err error
		if email, err = a.prompt("Email: "); err != nil {
			return err
		}
	}
	if email == "" {
		return apperr.InvalidErr("Email cannot be empty")
	}
	password, err := a.promptPassword("Password: ")
	if err != nil {
		return err
	}

	s, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", email, s.Capability())
	return nil
}

func runRegister(ctx context.Context, a *app, _ []string) error {
	var req models.RegisterRequest
	var err error
	if req.Name, err = a.prompt("Name: "); err != nil {
		return err
	}
	if req.Address, err = a.prompt("Address: "); err != nil {
		return err
	}
	if req.Email, err = a.prompt("Email: "); err != nil {
		return err
	}
	if req.Email == "" {
		return apperr.InvalidErr("Email cannot be empty")
	}
	if req.Password, err = a.promptPassword("Password: "); err != nil {
		return err
	}
	if req.Password == "" {
		return apperr.InvalidErr("Password cannot be empty")
	}
	confirm, err := a.promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if confirm != req.Password {
		return apperr.InvalidErr("Passwords do not match")
	}

	if err := a.sessions.Register(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registration successful. Log in with: shopctl login %s\n", req.Email)
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.sessions.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func runWhoami(_ context.Context, a *app, _ []string) error {
	s, ok := a.sessions.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "User ID:\t%s\n", s.UserID)
	if s.Email != "" {
		fmt.Fprintf(tw, "Email:\t%s\n", s.Email)
	}
	fmt.Fprintf(tw, "Role:\t%s\n", s.Capability())
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(tw, "Expires:\t%s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runProducts(ctx context.Context, a *app, _ []string) error {
	products, err := a.catalog.ListProducts(ctx)
	if err != nil {
		return err
	}
	printProducts(a.out, products, false)
	return nil
}

func runSearch(ctx context.Context, a *app, args []string) error {
	query := catalog.NormalizeQuery(strings.Join(args, " "))
	products, err := a.catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	printProducts(a.out, products, false)
	return nil
}

func runProduct(ctx context.Context, a *app, args []string) error {
	if err := requireArgs("product", args, 1); err != nil {
		return err
	}
	p, err := a.catalog.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}
	printProduct(a.out, p)
	return nil
}

func runCart(ctx context.Context, a *app, _ []string) error {
	if _, ok := a.sessions.Current(); !ok {
		fmt.Fprintln(a.out, "Your cart is empty. Log in to see your cart.")
		return nil
	}
	lines, err := a.cart.Fetch(ctx, a.sessions)
	if err != nil {
		fmt.Fprintln(a.out, apperr.Notice(err))
	}
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	printLines(a.out, lines)
	fmt.Fprintf(a.out, "\n%d items, subtotal %s\n", len(lines), pricing.Display(pricing.Subtotal(lines)))
	return nil
}

// quantityArg reads an optional quantity argument, defaulting to 1.
func quantityArg(args []string, i int) (int, error) {
	q := catalog.NewQuantitySelector()
	if len(args) > i && !q.SetText(args[i]) {
		return 0, apperr.InvalidErr(fmt.Sprintf("Invalid quantity %q", args[i]))
	}
	return q.Value(), nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	if err := requireArgs("add", args, 1); err != nil {
		return err
	}
	qty, err := quantityArg(args, 1)
	if err != nil {
		return err
	}
	if err := a.catalog.AddToCart(ctx, a.sessions, args[0], qty); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %d x %s to your cart. Cart now has %d items.\n", qty, args[0], a.cart.Count(ctx, a.sessions))
	return nil
}

type checkoutFlags struct {
	invoice  string
	yes      bool
	name     string
	address  string
	email    string
	location string
}

func bindCheckoutFlags(fs *flag.FlagSet) *checkoutFlags {
	f := &checkoutFlags{}
	fs.StringVar(&f.invoice, "invoice", "creditCard", "invoice method: creditCard or cashOnDelivery")
	fs.BoolVar(&f.yes, "yes", false, "place the order without prompting")
	fs.StringVar(&f.name, "name", "", "shipping name")
	fs.StringVar(&f.address, "address", "", "shipping address")
	fs.StringVar(&f.email, "email", "", "shipping email")
	fs.StringVar(&f.location, "location", "", "delivery location")
	return f
}

func runCheckout(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	all := fs.Bool("all", false, "check out the whole cart")
	opts := bindCheckoutFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := a.sessions.Require(); err != nil {
		return err
	}

	lines, err := a.cart.Fetch(ctx, a.sessions)
	if err != nil {
		return err
	}
	var sel *cart.Selection
	if *all {
		sel = cart.NewSelection()
		sel.SelectAll(lines)
	} else {
		sel = cart.SelectByID(lines, fs.Args())
	}
	draft, err := cart.ProceedToCheckout(sel)
	if err != nil {
		return err
	}
	return a.placeOrder(ctx, draft, opts)
}

func runBuy(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ContinueOnError)
	opts := bindCheckoutFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	rest := fs.Args()
	if err := requireArgs("buy", rest, 1); err != nil {
		return err
	}
	qty, err := quantityArg(rest, 1)
	if err != nil {
		return err
	}

	product, err := a.catalog.GetProduct(ctx, rest[0])
	if err != nil {
		return err
	}
	draft, err := a.catalog.BuyNow(a.sessions, product, qty)
	if err != nil {
		return err
	}
	return a.placeOrder(ctx, draft, opts)
}

// placeOrder runs a checkout from draft to a placed order. A price change
// shows the new total and asks again; with -yes it stops instead.
func (a *app) placeOrder(ctx context.Context, draft checkout.Draft, f *checkoutFlags) error {
	flow := checkout.NewFlow(a.client, a.sessions, a.checkout)
	if err := flow.Begin(ctx, draft); err != nil {
		return err
	}

	shipping := flow.View().ShippingInfo
	overrideShipping(&shipping, f)
	if !f.yes {
		var err error
		if shipping, err = a.editShipping(shipping); err != nil {
			return err
		}
	}
	flow.SetShipping(shipping)

	method, err := models.ParseInvoiceMethod(f.invoice)
	if err != nil {
		return apperr.InvalidErr(err.Error())
	}
	if err := flow.SetInvoiceMethod(method); err != nil {
		return err
	}

	for {
		fmt.Fprintln(a.out)
		printSummary(a.out, flow.View())
		fmt.Fprintln(a.out)

		if !f.yes {
			ok, err := a.confirm("Place order?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(a.out, "Order cancelled.")
				return nil
			}
		}

		orderID, err := flow.Submit(ctx)
		if apperr.Is(err, apperr.PriceChanged) && !f.yes {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Order placed. Order ID: %s\n", orderID)
		return nil
	}
}

func overrideShipping(s *models.ShippingInfo, f *checkoutFlags) {
	if f.name != "" {
		s.Name = f.name
	}
	if f.address != "" {
		s.Address = f.address
	}
	if f.email != "" {
		s.Email = f.email
	}
	if f.location != "" {
		s.DeliveryLocation = f.location
	}
}

func (a *app) editShipping(s models.ShippingInfo) (models.ShippingInfo, error) {
	var err error
	if s.Name, err = a.promptDefault("Name", s.Name); err != nil {
		return s, err
	}
	if s.Address, err = a.promptDefault("Address", s.Address); err != nil {
		return s, err
	}
	if s.Email, err = a.promptDefault("Email", s.Email); err != nil {
		return s, err
	}
	if s.DeliveryLocation, err = a.promptDefault("Delivery location", s.DeliveryLocation); err != nil {
		return s, err
	}
	return s, nil
}

func runOrders(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	statusFlag := fs.String("status", "pending", "pending or completed")
	pageFlag := fs.Int("page", 1, "page number")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	status, err := models.ParseOrderStatus(*statusFlag)
	if err != nil {
		return apperr.InvalidErr(err.Error())
	}
	if _, ok := a.sessions.Current(); !ok {
		fmt.Fprintln(a.out, "No orders found. Log in to see your orders.")
		return nil
	}

	history := orders.NewHistory(a.orders, a.sessions)
	page, err := history.SetStatus(ctx, status)
	if err == nil && *pageFlag > 1 {
		page, err = history.GoToPage(ctx, *pageFlag)
	}
	if err != nil {
		fmt.Fprintln(a.out, apperr.Notice(err))
	}
	printOrders(a.out, page)
	return nil
}

func runProfile(ctx context.Context, a *app, _ []string) error {
	s, err := a.sessions.Require()
	if err != nil {
		return err
	}
	p, err := a.client.GetProfile(ctx, s.Token)
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", p.Email)
	fmt.Fprintf(tw, "Address:\t%s\n", p.Address)
	return tw.Flush()
}

func runAdminProducts(ctx context.Context, a *app, _ []string) error {
	products, err := a.console.LoadProducts(ctx)
	if err != nil {
		return err
	}
	printProducts(a.out, products, true)
	return nil
}

func runAdminToggleProduct(ctx context.Context, a *app, args []string) error {
	if err := requireArgs("admin-toggle-product", args, 1); err != nil {
		return err
	}
	if _, err := a.console.LoadProducts(ctx); err != nil {
		return err
	}
	p, err := a.console.ToggleProductActive(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s.\n", p.Name, productStatus(p))
	return nil
}

func runAdminUsers(ctx context.Context, a *app, _ []string) error {
	users, err := a.console.LoadUsers(ctx)
	if err != nil {
		return err
	}
	printUsers(a.out, users)
	return nil
}

func runAdminToggleUser(ctx context.Context, a *app, args []string) error {
	if err := requireArgs("admin-toggle-user", args, 1); err != nil {
		return err
	}
	if _, err := a.console.LoadUsers(ctx); err != nil {
		return err
	}
	u, err := a.console.ToggleUserAdmin(ctx, args[0])
	if err != nil {
		return err
	}
	if u.IsAdmin {
		fmt.Fprintf(a.out, "%s is now an admin.\n", u.Email)
	} else {
		fmt.Fprintf(a.out, "%s is no longer an admin.\n", u.Email)
	}
	return nil
}
