package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/clovermart/storefront/infra/shopapi"
	"github.com/clovermart/storefront/internal/app/domain/order"
	"github.com/clovermart/storefront/internal/app/services/catalog"
	"github.com/clovermart/storefront/internal/cli"
)

func (a *app) run(command string, args []string) error {
	ctx := context.Background()
	a.session.Bootstrap(ctx)

	switch command {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.cmdWhoami()
	case "products":
		return a.cmdProducts(ctx, args)
	case "product":
		return a.cmdProduct(ctx, args)
	case "categories":
		return a.cmdCategories(ctx)
	case "cart":
		return a.cmdCart(ctx)
	case "cart-add":
		return a.cmdCartAdd(ctx, args)
	case "cart-rm":
		return a.cmdCartRemove(ctx, args)
	case "cart-set":
		return a.cmdCartSet(ctx, args)
	case "checkout":
		return a.cmdCheckout(ctx, args)
	case "orders":
		return a.cmdOrders(ctx)
	case "order":
		return a.cmdOrder(ctx, args)
	case "product-add":
		return a.cmdProductAdd(ctx, args)
	case "product-update":
		return a.cmdProductUpdate(ctx, args)
	case "product-delete":
		return a.cmdProductDelete(ctx, args)
	case "order-status":
		return a.cmdOrderStatus(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdCompletion(args []string) error {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)
	install := fs.Bool("install", false, "write the script to the shell's completion directory")
	fs.Parse(args)

	shell := "bash"
	if fs.NArg() > 0 {
		shell = fs.Arg(0)
	}
	if *install {
		return cli.InstallCompletion(shell)
	}
	return cli.GenerateCompletion(os.Stdout, shell)
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("register requires -name, -email and -password")
	}
	if err := a.session.Register(ctx, *name, *email, *password); err != nil {
		return err
	}
	fmt.Println("Account created. Log in to start shopping.")
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}
	if err := a.session.Login(ctx, *email, *password); err != nil {
		return err
	}
	if u, ok := a.session.User(); ok {
		fmt.Printf("Logged in as %s <%s>\n", u.Name, u.Email)
	}
	return nil
}

func (a *app) cmdWhoami() error {
	u, ok := a.session.User()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", u.Name, u.Email, u.Role)
	return nil
}

func (a *app) cmdProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	search := fs.String("search", "", "substring match on name or description")
	category := fs.String("category", catalog.CategoryAll, "category filter")
	sortOrder := fs.String("sort", string(catalog.SortByName), "name, price-low, price-high or newest")
	fs.Parse(args)

	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	products := a.catalog.Products(catalog.Query{
		Search:   *search,
		Category: *category,
		Sort:     catalog.SortOrder(*sortOrder),
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Category, p.Price, p.Stock)
	}
	return w.Flush()
}

func (a *app) cmdProduct(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: product ID")
	}
	p, err := a.catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\nCategory: %s\nPrice: %.2f\nStock: %d\n", p.Name, p.Description, p.Category, p.Price, p.Stock)
	return nil
}

func (a *app) cmdCategories(ctx context.Context) error {
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	for _, c := range a.catalog.Categories() {
		fmt.Println(c)
	}
	return nil
}

func (a *app) cmdCart(ctx context.Context) error {
	if err := a.cart.Refresh(ctx); err != nil {
		return err
	}
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\n", it.ID, it.Product.Name, it.Quantity, it.Product.Price, it.Subtotal())
	}
	w.Flush()

	q := a.checkout.QuoteCart()
	fmt.Printf("Subtotal: %.2f  Shipping: %.2f  Tax: %.2f  Total: %.2f\n", q.Subtotal, q.Shipping, q.Tax, q.Total)
	return nil
}

func (a *app) cmdCartAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	qty := fs.Int("qty", 1, "quantity to add")
	if len(args) < 1 {
		return fmt.Errorf("usage: cart-add PRODUCT_ID [-qty N]")
	}
	fs.Parse(args[1:])
	return a.cart.AddToCart(ctx, args[0], *qty)
}

func (a *app) cmdCartRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cart-rm ITEM_ID")
	}
	return a.cart.RemoveFromCart(ctx, args[0])
}

func (a *app) cmdCartSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: cart-set ITEM_ID QTY")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	return a.cart.UpdateQuantity(ctx, args[0], qty)
}

func (a *app) cmdCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "street address")
	city := fs.String("city", "", "city")
	zip := fs.String("zip", "", "postal code")
	country := fs.String("country", "", "country")
	method := fs.String("method", "card", "payment method")
	fs.Parse(args)

	if err := a.cart.Refresh(ctx); err != nil {
		return err
	}

	addr := order.ShippingAddress{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Phone:     *phone,
		Address:   *address,
		City:      *city,
		ZipCode:   *zip,
		Country:   *country,
	}
	placed, payment, err := a.checkout.PlaceOrder(ctx, addr, *method)
	if err != nil {
		return err
	}
	fmt.Printf("Order %s placed, total %.2f.\n", placed.ID, placed.TotalAmount)
	if payment.RedirectURL != "" {
		fmt.Printf("Complete payment at: %s\n", payment.RedirectURL)
	}
	return nil
}

func (a *app) cmdOrders(ctx context.Context) error {
	list, err := a.orders.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.TotalAmount)
	}
	return w.Flush()
}

func (a *app) cmdOrder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: order ID")
	}
	o, err := a.orders.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Order %s  status=%s  total=%.2f  method=%s\n", o.ID, o.Status, o.TotalAmount, o.PaymentMethod)
	fmt.Printf("Ship to: %s %s, %s, %s %s, %s\n",
		o.ShippingAddress.FirstName, o.ShippingAddress.LastName,
		o.ShippingAddress.Address, o.ShippingAddress.City,
		o.ShippingAddress.ZipCode, o.ShippingAddress.Country)
	for _, line := range o.Lines {
		fmt.Printf("  %dx %s @ %.2f\n", line.Quantity, line.Product.Name, line.Price)
	}
	return nil
}

func productInputFlags(fs *flag.FlagSet) func() shopapi.ProductInput {
	name := fs.String("name", "", "product name")
	price := fs.Float64("price", 0, "unit price")
	stock := fs.Int("stock", 0, "units in stock")
	category := fs.String("category", "", "category label")
	description := fs.String("description", "", "product description")
	image := fs.String("image", "", "image URL")
	return func() shopapi.ProductInput {
		return shopapi.ProductInput{
			Name:        *name,
			Price:       *price,
			Stock:       *stock,
			Category:    *category,
			Description: *description,
			Image:       *image,
		}
	}
}

func (a *app) cmdProductAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("product-add", flag.ExitOnError)
	input := productInputFlags(fs)
	fs.Parse(args)

	p, err := a.admin.AddProduct(ctx, input())
	if err != nil {
		return err
	}
	fmt.Printf("Product %s created.\n", p.ID)
	return nil
}

func (a *app) cmdProductUpdate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: product-update ID [flags]")
	}
	fs := flag.NewFlagSet("product-update", flag.ExitOnError)
	input := productInputFlags(fs)
	fs.Parse(args[1:])

	p, err := a.admin.UpdateProduct(ctx, args[0], input())
	if err != nil {
		return err
	}
	fmt.Printf("Product %s updated.\n", p.ID)
	return nil
}

func (a *app) cmdProductDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: product-delete ID")
	}
	if err := a.admin.DeleteProduct(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("Product deleted.")
	return nil
}

func (a *app) cmdOrderStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: order-status ORDER_ID STATUS")
	}
	o, err := a.admin.UpdateOrderStatus(ctx, args[0], order.Status(args[1]))
	if err != nil {
		return err
	}
	fmt.Printf("Order %s is now %s.\n", o.ID, o.Status)
	return nil
}
