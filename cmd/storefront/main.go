// Package main is the storefront command-line client. It wires the gateway
// client, the session and cart stores, and the derived views against a
// running backend, keeping the bearer token on disk between invocations.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/clovermart/storefront/infra/shopapi"
	"github.com/clovermart/storefront/internal/app/services/admin"
	"github.com/clovermart/storefront/internal/app/services/cart"
	"github.com/clovermart/storefront/internal/app/services/catalog"
	"github.com/clovermart/storefront/internal/app/services/checkout"
	"github.com/clovermart/storefront/internal/app/services/orders"
	"github.com/clovermart/storefront/internal/app/services/session"
	"github.com/clovermart/storefront/internal/config"
	"github.com/clovermart/storefront/internal/credstore"
	"github.com/clovermart/storefront/internal/notify"
	"github.com/clovermart/storefront/pkg/logger"
)

const usage = `Usage: storefront [-config path] <command> [arguments]

Account:
  register -name NAME -email EMAIL -password PASS
  login -email EMAIL -password PASS
  logout
  whoami

Catalog:
  products [-search TEXT] [-category NAME] [-sort name|price-low|price-high|newest]
  product ID
  categories

Cart:
  cart
  cart-add PRODUCT_ID [-qty N]
  cart-rm ITEM_ID
  cart-set ITEM_ID QTY

Orders:
  checkout -first NAME -last NAME -email EMAIL -address ADDR -city CITY -zip ZIP -country COUNTRY [-phone PHONE] [-method card]
  orders
  order ID

Admin:
  product-add -name NAME -price P -stock N [-category C] [-description D] [-image URL]
  product-update ID -name NAME -price P -stock N [-category C] [-description D] [-image URL]
  product-delete ID
  order-status ORDER_ID STATUS

Other:
  completion [-install] [bash|zsh|fish]
`

// app bundles the wired stores so command handlers share one construction
// path.
type app struct {
	client   *shopapi.Client
	session  *session.Service
	cart     *cart.Service
	catalog  *catalog.Service
	checkout *checkout.Service
	orders   *orders.Service
	admin    *admin.Service
	log      *logger.Logger
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Completion needs no backend or config.
	if flag.Arg(0) == "completion" {
		if err := cmdCompletion(flag.Args()[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
			os.Exit(1)
		}
		return
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}

	a, err := buildApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}

	if err := a.run(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func buildApp(cfg config.Config) (*app, error) {
	log := logger.NewAtLevel("storefront", cfg.LogLevel)

	creds, err := credstore.NewFileStore(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	client, err := shopapi.New(shopapi.Config{
		BaseURL:     cfg.BackendURL,
		Credentials: creds,
		Timeout:     cfg.RequestTimeout.Std(),
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("build gateway client: %w", err)
	}

	notifier := notify.NewLogNotifier(log)
	sess := session.New(client.Auth(), creds, notifier, log)
	cartStore := cart.New(client.Cart(), sess, notifier, log)
	ordersView := orders.New(client.Orders(), log)

	return &app{
		client:   client,
		session:  sess,
		cart:     cartStore,
		catalog:  catalog.New(client.Catalog(), log),
		checkout: checkout.New(client.Orders(), client.Payments(), cartStore, notifier, log),
		orders:   ordersView,
		admin:    admin.New(client.Admin(), sess, ordersView, log),
		log:      log,
	}, nil
}
