// Command checkout places an order against a running storefront API:
//
//	checkout -category local-resident -item "Organic Quinoa=2" \
//	  -name "Asha Reddy" -phone 9876543210 -address "12 Lake View Road" -pincode 517646
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/nikolayk812/ecomall/internal/checkout"
	"github.com/nikolayk812/ecomall/internal/config"
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/nikolayk812/ecomall/internal/port"
	"github.com/nikolayk812/ecomall/internal/restclient"
	"github.com/nikolayk812/ecomall/internal/session"
	"github.com/nikolayk812/ecomall/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type itemFlag map[string]int

func (f itemFlag) String() string {
	return fmt.Sprint(map[string]int(f))
}

// Set parses "name=quantity", a bare name means quantity 1.
func (f itemFlag) Set(value string) error {
	name, qty, found := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("product name is empty")
	}

	quantity := 1
	if found {
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return fmt.Errorf("quantity %q: %w", qty, err)
		}
		quantity = n
	}

	f[name] += quantity
	return nil
}

type options struct {
	category string
	items    itemFlag
	details  struct {
		name, phone, address, pincode                   string
		clubName, college, contact, clubPhone, clubAddr string
	}
}

func main() {
	opts := options{items: itemFlag{}}

	flag.StringVar(&opts.category, "category", "", "customer category: local-resident or bulk-club")
	flag.Var(opts.items, "item", `cart line "product name=quantity", repeatable`)
	flag.StringVar(&opts.details.name, "name", "", "resident name")
	flag.StringVar(&opts.details.phone, "phone", "", "resident phone")
	flag.StringVar(&opts.details.address, "address", "", "resident address")
	flag.StringVar(&opts.details.pincode, "pincode", "", "resident pincode")
	flag.StringVar(&opts.details.clubName, "club-name", "", "club name")
	flag.StringVar(&opts.details.college, "college", "", "college name")
	flag.StringVar(&opts.details.contact, "contact", "", "club contact person")
	flag.StringVar(&opts.details.clubPhone, "club-phone", "", "club phone")
	flag.StringVar(&opts.details.clubAddr, "club-address", "", "college address")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "checkout failed:", err)

		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			printFields(vErr.Fields)
		}

		var apiErr *restclient.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			printFields(apiErr.Fields)
		}

		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := restclient.NewClient(cfg.Checkout.APIBaseURL, restclient.WithLogger(lg.Named("api")))
	if err != nil {
		return fmt.Errorf("restclient.NewClient: %w", err)
	}

	store, closeStore, err := newSessionStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeStore()

	cur, err := cfg.Checkout.CurrencyUnit()
	if err != nil {
		return err
	}

	sess, err := checkout.NewSession(uuid.NewString(), domain.NewCart(cur), store, lg)
	if err != nil {
		return fmt.Errorf("checkout.NewSession: %w", err)
	}

	if err := fillCart(ctx, client, sess, opts.items); err != nil {
		return err
	}

	category, err := domain.ToCustomerCategory(opts.category)
	if err != nil {
		return fmt.Errorf("-category %q: %w", opts.category, err)
	}

	if err := sess.SelectCategory(ctx, category); err != nil {
		return fmt.Errorf("sess.SelectCategory: %w", err)
	}

	submitter, err := checkout.NewSubmitter(client, cfg.Checkout.Rules(),
		checkout.WithTimeout(cfg.Checkout.SubmitTimeout),
		checkout.WithLogger(lg.Named("checkout")))
	if err != nil {
		return fmt.Errorf("checkout.NewSubmitter: %w", err)
	}

	receipt, err := submitter.Submit(ctx, sess, opts.customerDetails(category))
	if err != nil {
		return err
	}

	fmt.Printf("order %s placed: %d items, %s\n", receipt.OrderID, receipt.TotalQuantity, receipt.TotalAmount)

	return nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (port.SessionStore, func(), error) {
	if cfg.Redis.URL == "" {
		return session.NewMemoryStore(), func() {}, nil
	}

	client, err := session.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("session.NewRedisClient: %w", err)
	}

	store, err := session.NewRedisStore(client, cfg.Redis.SessionTTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("session.NewRedisStore: %w", err)
	}

	lg.Debug("redis session store", zap.Duration("ttl", cfg.Redis.SessionTTL))

	return store, func() { _ = client.Close() }, nil
}

func fillCart(ctx context.Context, catalog port.ProductLister, sess *checkout.Session, items itemFlag) error {
	products, err := catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("catalog.ListProducts: %w", err)
	}

	byName := lo.KeyBy(products, func(p domain.Product) string {
		return strings.ToLower(p.Name)
	})

	for name, quantity := range items {
		product, ok := byName[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("product %q is not in the catalog", name)
		}
		sess.Cart().AddItem(product, quantity)
	}

	return nil
}

func (o options) customerDetails(category domain.CustomerCategory) domain.CustomerDetails {
	d := o.details

	if category == domain.CategoryBulkClub {
		return domain.BulkClub{
			ClubName:      d.clubName,
			CollegeName:   d.college,
			ContactPerson: d.contact,
			Phone:         d.clubPhone,
			Address:       d.clubAddr,
		}
	}

	return domain.LocalResident{
		Name:    d.name,
		Phone:   d.phone,
		Address: d.address,
		Pincode: d.pincode,
	}
}

func printFields(fields domain.FieldErrors) {
	for _, field := range fields.Fields() {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, fields[field])
	}
}
