// Command shopctl is a terminal client for the PC SHOP store service.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pcshop-storefront/internal/admin"
	"pcshop-storefront/internal/apiclient"
	"pcshop-storefront/internal/apperr"
	"pcshop-storefront/internal/cart"
	"pcshop-storefront/internal/catalog"
	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/config"
	"pcshop-storefront/internal/logger"
	"pcshop-storefront/internal/orders"
	"pcshop-storefront/internal/session"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":                {"login [email]", runLogin},
		"register":             {"register", runRegister},
		"logout":               {"logout", runLogout},
		"whoami":               {"whoami", runWhoami},
		"products":             {"products", runProducts},
		"search":               {"search <query>", runSearch},
		"product":              {"product <id>", runProduct},
		"cart":                 {"cart", runCart},
		"add":                  {"add <product-id> [quantity]", runAdd},
		"checkout":             {"checkout [-all] [-invoice cod] [-yes] [product-id...]", runCheckout},
		"buy":                  {"buy [-invoice cod] [-yes] <product-id> [quantity]", runBuy},
		"orders":               {"orders [-status pending|completed] [-page n]", runOrders},
		"profile":              {"profile", runProfile},
		"admin-products":       {"admin-products", runAdminProducts},
		"admin-toggle-product": {"admin-toggle-product <product-id>", runAdminToggleProduct},
		"admin-users":          {"admin-users", runAdminUsers},
		"admin-toggle-user":    {"admin-toggle-user <user-id>", runAdminToggleUser},
	}
}

// app holds the views a command works with. The session is read from the
// token file on every call.
type app struct {
	client   *apiclient.Client
	sessions *session.Manager
	catalog  *catalog.Catalog
	cart     *cart.View
	orders   *orders.Lister
	console  *admin.Console
	checkout checkout.Options

	in  *bufio.Reader
	out io.Writer
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Diagnostics go to stderr and stay quiet unless asked for.
	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.New(logger.Config{Level: level, Format: cfg.LogFormat, Output: os.Stderr})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, session.NewFileStore(cfg.TokenFile), log)
	if err := cmd.run(ctx, a, os.Args[2:]); err != nil {
		log.Debug("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		fmt.Fprintln(os.Stderr, apperr.Notice(err))
		if apperr.Is(err, apperr.AuthRequired) {
			fmt.Fprintln(os.Stderr, "Run: shopctl login")
		}
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, tokens session.TokenStore, log *zap.Logger) *app {
	client := apiclient.New(cfg.APIURL, apiclient.WithLogger(log), apiclient.WithTimeout(cfg.RequestTimeout))
	mgr := session.NewManager(tokens, client, log)
	return &app{
		client:   client,
		sessions: mgr,
		catalog:  catalog.New(client, nil, log),
		cart:     cart.NewView(client, log),
		orders:   orders.NewLister(client, cfg.OrdersPageSize, log),
		console:  admin.NewConsole(client, mgr, log),
		checkout: checkout.Options{
			ShippingFee:      decimal.NewNullDecimal(cfg.ShippingFee),
			RevalidatePrices: cfg.RevalidatePrices,
			Logger:           log,
		},
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Usage: shopctl <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}
