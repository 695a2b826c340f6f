package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/pricing"
	storeredis "storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/pkg/shiprocket"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db         *gorm.DB
	products   repository.ProductRepository
	bundles    repository.BundleRepository
	cart       repository.CartRepository
	couponRepo repository.CouponRepository
	orders     repository.OrderRepository
	sales      repository.SalesRepository
	redis      *storeredis.Client
	mr         *miniredis.Miniredis
	calc       *pricing.Calculator
	log        *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return &testEnv{
		db:         db,
		products:   repository.NewProductRepository(db),
		bundles:    repository.NewBundleRepository(db),
		cart:       repository.NewCartRepository(db),
		couponRepo: repository.NewCouponRepository(db),
		orders:     repository.NewOrderRepository(db),
		sales:      repository.NewSalesRepository(db),
		redis:      storeredis.NewClient(rdb),
		mr:         mr,
		calc:       pricing.NewCalculator(pricing.DefaultGSTPercent),
		log:        zap.NewNop(),
	}
}

func (e *testEnv) transformer() *CartTransformer {
	return NewCartTransformer(e.products, e.bundles, e.calc, e.log)
}

type catalog struct {
	oil      *models.Product
	oilLitre models.ProductVariant
	oilHalf  models.ProductVariant
	soap     *models.Product
	lavender models.ProductVariant
	rose     models.ProductVariant
	kit      *models.Kit
	combo    *models.Combo
}

func seedCatalog(t *testing.T, e *testEnv) catalog {
	t.Helper()
	ctx := context.Background()

	oil := &models.Product{
		Name:  "Cold pressed groundnut oil",
		Slug:  "groundnut-oil",
		Image: "https://cdn.example.com/groundnut.jpg",
		Price: decimal.NewFromInt(1180),
		Variants: []models.ProductVariant{
			{Label: "1 L", SKU: "GN-1L", Price: decimal.NewFromInt(1180), Stock: 10},
			{Label: "500 ml", SKU: "GN-500", Price: decimal.NewFromInt(649), Stock: 10},
		},
	}
	soap := &models.Product{
		Name:  "Handmade soap",
		Slug:  "handmade-soap",
		Image: "https://cdn.example.com/soap.jpg",
		Price: decimal.NewFromInt(236),
		Variants: []models.ProductVariant{
			{Label: "Lavender", SKU: "SOAP-LAV", Price: decimal.NewFromInt(236), Stock: 5},
			{Label: "Rose", SKU: "SOAP-ROSE", Price: decimal.NewFromInt(236), Stock: 5},
		},
	}
	require.NoError(t, e.products.Create(ctx, oil))
	require.NoError(t, e.products.Create(ctx, soap))

	kit := &models.Kit{
		Name:  "Kitchen starter kit",
		Image: "https://cdn.example.com/kit.jpg",
		Price: decimal.NewFromInt(999),
		Products: []models.KitProduct{
			{ProductID: oil.ID, VariantID: &oil.Variants[1].ID, Quantity: 1},
			{ProductID: soap.ID, Quantity: 2},
		},
	}
	require.NoError(t, e.bundles.CreateKit(ctx, kit))

	combo := &models.Combo{
		Name:  "Pick-your-own combo",
		Image: "https://cdn.example.com/combo.jpg",
		Products: []models.ComboProduct{
			{ProductID: oil.ID, Quantity: 1},
			{ProductID: soap.ID, Quantity: 1},
		},
	}
	require.NoError(t, e.bundles.CreateCombo(ctx, combo))

	return catalog{
		oil:      oil,
		oilLitre: oil.Variants[0],
		oilHalf:  oil.Variants[1],
		soap:     soap,
		lavender: soap.Variants[0],
		rose:     soap.Variants[1],
		kit:      kit,
		combo:    combo,
	}
}

func uintPtr(v uint) *uint {
	return &v
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeMessenger struct {
	sent []sentMail
	err  error
}

func (m *fakeMessenger) SendTextMessage(_ context.Context, phone, message string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: []string{phone}, body: message})
	return nil
}

type fakePublisher struct {
	events []events.OrderCompleted
	err    error
}

func (p *fakePublisher) PublishOrderCompleted(_ context.Context, event events.OrderCompleted) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeShipping struct {
	payloads []shiprocket.OrderPayload
	err      error
}

func (f *fakeShipping) CreateOrder(_ context.Context, payload shiprocket.OrderPayload) (*shiprocket.CreateOrderResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	return &shiprocket.CreateOrderResponse{OrderID: 5001, ShipmentID: 7001, Status: "NEW"}, nil
}

var errBoom = errors.New("boom")
