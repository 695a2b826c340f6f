package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/pkg/shiprocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 5

// Failure stages reported by CompleteOrder.
const (
	StageStock    = "stock"
	StageLedger   = "ledger"
	StageCoupon   = "coupon"
	StageCart     = "cart"
	StageEmail    = "email"
	StageWhatsApp = "whatsapp"
	StageShipping = "shipping"
	StageEvent    = "event"
)

type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

type ShippingClient interface {
	CreateOrder(ctx context.Context, payload shiprocket.OrderPayload) (*shiprocket.CreateOrderResponse, error)
}

type CompleteOrderInput struct {
	UserID          uint              `json:"user_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	ShippingAddress models.Address    `json:"shipping_address"`
	Items           []models.LineItem `json:"items"`
	Summary         pricing.Summary   `json:"summary"`
	PaymentOrderID  string            `json:"payment_order_id"`
	PaymentID       string            `json:"payment_id"`
}

// ItemFailure is a step of order completion that failed after the order was stored.
// ItemIndex is -1 for failures that do not belong to one item.
type ItemFailure struct {
	Stage     string `json:"stage"`
	ItemIndex int    `json:"item_index"`
	Error     string `json:"error"`
}

type CompletionResult struct {
	OrderID          uint          `json:"order_id"`
	PublicID         string        `json:"public_id"`
	OrderNumber      string        `json:"order_number"`
	AlreadyCompleted bool          `json:"already_completed,omitempty"`
	Failures         []ItemFailure `json:"failures,omitempty"`
}

type OrderService interface {
	CompleteOrder(ctx context.Context, input CompleteOrderInput) (*CompletionResult, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListOrdersByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	AdjustStock(ctx context.Context, variantID uint, quantity int, op repository.StockOperation) error
	GetSales(ctx context.Context, orderID uint) ([]models.SalesRecord, error)
	SalesReport(ctx context.Context, startDate, endDate time.Time) (*SalesReport, error)
}

// SalesReport aggregates the ledger for a period. To is exclusive.
type SalesReport struct {
	From    time.Time             `json:"from"`
	To      time.Time             `json:"to"`
	Revenue decimal.Decimal       `json:"revenue"`
	Units   int                   `json:"units"`
	Items   []models.SalesSummary `json:"items"`
}

type OrderDependencies struct {
	Orders         repository.OrderRepository
	Products       repository.ProductRepository
	Bundles        repository.BundleRepository
	Sales          repository.SalesRepository
	Cart           repository.CartRepository
	Coupons        CouponService
	Notifications  NotificationService
	Payments       PaymentService // nil keeps payment intents until they expire
	Calculator     *pricing.Calculator
	Shipping       ShippingClient // nil disables shipping order creation
	Locker         Locker
	LockTTL        time.Duration
	PickupLocation string
	Log            *zap.Logger
}

type orderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	bundleRepo     repository.BundleRepository
	salesRepo      repository.SalesRepository
	cartRepo       repository.CartRepository
	coupons        CouponService
	notifications  NotificationService
	payments       PaymentService
	calculator     *pricing.Calculator
	shipping       ShippingClient
	locker         Locker
	lockTTL        time.Duration
	pickupLocation string
	log            *zap.Logger

	now         func() time.Time
	orderNumber func(time.Time) string
}

func NewOrderService(deps OrderDependencies) OrderService {
	if deps.LockTTL <= 0 {
		deps.LockTTL = 10 * time.Minute
	}
	if deps.Calculator == nil {
		deps.Calculator = pricing.NewCalculator(pricing.DefaultGSTPercent)
	}
	return &orderService{
		orderRepo:      deps.Orders,
		productRepo:    deps.Products,
		bundleRepo:     deps.Bundles,
		salesRepo:      deps.Sales,
		cartRepo:       deps.Cart,
		coupons:        deps.Coupons,
		notifications:  deps.Notifications,
		payments:       deps.Payments,
		calculator:     deps.Calculator,
		shipping:       deps.Shipping,
		locker:         deps.Locker,
		lockTTL:        deps.LockTTL,
		pickupLocation: deps.PickupLocation,
		log:            deps.Log,
		now:            time.Now,
		orderNumber:    NewOrderNumber,
	}
}

// NewOrderNumber returns a short human-facing number such as 20261019-4821.
func NewOrderNumber(t time.Time) string {
	return fmt.Sprintf("%s-%04d", t.Format("20060102"), rand.IntN(10000))
}

func completionLockKey(paymentID string) string {
	return "order:payment:" + paymentID
}

// CompleteOrder stores the order and then runs every follow-up step. Only a failure
// to store the order fails the call; later steps are logged and collected in
// CompletionResult.Failures.
func (s *orderService) CompleteOrder(ctx context.Context, input CompleteOrderInput) (*CompletionResult, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, ErrMissingCustomer
	}

	// a retried callback finds its order even though the cart is already cleared
	if input.PaymentID != "" {
		existing, err := s.orderRepo.GetByPaymentID(ctx, input.PaymentID)
		switch {
		case err == nil:
			return &CompletionResult{
				OrderID:          existing.ID,
				PublicID:         existing.PublicID,
				OrderNumber:      existing.OrderNumber,
				AlreadyCompleted: true,
			}, nil
		case !errors.Is(err, repository.ErrOrderNotFound):
			return nil, fmt.Errorf("failed to look up payment: %w", err)
		}

		acquired, err := s.locker.AcquireLock(ctx, completionLockKey(input.PaymentID), s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire completion lock: %w", err)
		}
		if !acquired {
			return nil, ErrOrderInProgress
		}
	}

	if len(input.Items) == 0 {
		s.release(ctx, input.PaymentID)
		return nil, ErrEmptyCart
	}

	order := s.newOrder(input)
	if err := s.insertOrder(ctx, order); err != nil {
		s.release(ctx, input.PaymentID)
		return nil, err
	}

	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Uint("user_id", order.UserID),
		zap.String("total", order.Total.StringFixed(2)))

	if s.payments != nil && order.PaymentOrderID != "" {
		if err := s.payments.DiscardIntent(ctx, order.PaymentOrderID); err != nil {
			s.log.Warn("failed to discard payment intent",
				zap.String("payment_order_id", order.PaymentOrderID),
				zap.Error(err))
		}
	}

	c := &completion{order: order, log: s.log.With(zap.String("order_number", order.OrderNumber))}
	s.recordItems(ctx, c)

	if input.Summary.Coupon == pricing.CouponApplied && order.CouponCode != "" {
		c.fail(StageCoupon, -1, s.coupons.Consume(ctx, order.CouponCode))
	}
	c.fail(StageCart, -1, s.cartRepo.DeleteByUserID(ctx, order.UserID))

	c.fail(StageEmail, -1, s.notifications.SendOrderConfirmation(ctx, order))
	c.fail(StageEmail, -1, s.notifications.SendAdminNotification(ctx, order))
	c.fail(StageWhatsApp, -1, s.notifications.SendOrderMessage(ctx, order))
	if s.shipping != nil {
		c.fail(StageShipping, -1, s.createShipment(ctx, order))
	}
	c.fail(StageEvent, -1, s.notifications.PublishOrderCompleted(ctx, order, len(c.failures)))

	return &CompletionResult{
		OrderID:     order.ID,
		PublicID:    order.PublicID,
		OrderNumber: order.OrderNumber,
		Failures:    c.failures,
	}, nil
}

func (s *orderService) release(ctx context.Context, paymentID string) {
	if paymentID == "" {
		return
	}
	if err := s.locker.ReleaseLock(ctx, completionLockKey(paymentID)); err != nil {
		s.log.Error("failed to release completion lock", zap.String("payment_id", paymentID), zap.Error(err))
	}
}

func (s *orderService) newOrder(input CompleteOrderInput) *models.Order {
	summary := input.Summary.Rounded()

	items := make([]models.LineItem, len(input.Items))
	for i, item := range input.Items {
		items[i] = s.calculator.Priced(item)
	}

	order := &models.Order{
		UserID:          input.UserID,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		ShippingAddress: input.ShippingAddress,
		Items:           items,
		Subtotal:        summary.Subtotal,
		DiscountAmount:  summary.Discount,
		Total:           summary.FinalTotal,
		Status:          string(models.OrderConfirmed),
		PaymentStatus:   string(models.PaymentPending),
		PaymentOrderID:  input.PaymentOrderID,
		PaymentID:       input.PaymentID,
	}
	if summary.Coupon == pricing.CouponApplied {
		order.CouponCode = repository.NormalizeCode(summary.CouponCode)
	}
	if input.PaymentID != "" {
		order.PaymentStatus = string(models.PaymentPaid)
	}
	return order
}

// insertOrder regenerates the order number on a unique violation.
func (s *orderService) insertOrder(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.PublicID = uuid.NewString()
		order.OrderNumber = s.orderNumber(s.now())

		err = s.orderRepo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !repository.IsUniqueViolation(err) {
			return fmt.Errorf("failed to create order: %w", err)
		}
		s.log.Warn("order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt))
	}
	return fmt.Errorf("failed to allocate order number after %d attempts: %w", maxOrderNumberAttempts, err)
}

type completion struct {
	order    *models.Order
	failures []ItemFailure
	log      *zap.Logger
}

func (c *completion) fail(stage string, index int, err error) {
	if err == nil {
		return
	}
	c.log.Error("order completion step failed",
		zap.String("stage", stage),
		zap.Int("item_index", index),
		zap.Error(err))
	c.failures = append(c.failures, ItemFailure{Stage: stage, ItemIndex: index, Error: err.Error()})
}

// recordItems deducts stock and writes one ledger row per item. The ledger row is
// written whether or not the deduction succeeded.
func (s *orderService) recordItems(ctx context.Context, c *completion) {
	soldAt := s.now()

	for i, item := range c.order.Items {
		deducted, err := s.deductStock(ctx, item)
		c.fail(StageStock, i, err)

		unit, _ := s.calculator.UnitPrices(item)
		quantity := decimal.NewFromInt(int64(item.Quantity))

		record := &models.SalesRecord{
			OrderID:       c.order.ID,
			OrderNumber:   c.order.OrderNumber,
			ItemKind:      string(item.Kind),
			ProductID:     item.ProductID,
			KitID:         item.KitID,
			ComboID:       item.ComboID,
			ItemName:      item.Name,
			VariantLabel:  item.VariantLabel(),
			Quantity:      item.Quantity,
			UnitPrice:     unit.Round(2),
			TotalPrice:    unit.Mul(quantity).Round(2),
			StockDeducted: deducted,
			SoldAt:        soldAt,
		}
		if item.Variant != nil && item.Variant.VariantID != 0 {
			variantID := item.Variant.VariantID
			record.VariantID = &variantID
		}
		c.fail(StageLedger, i, s.salesRepo.Create(ctx, record))
	}
}

func (s *orderService) deductStock(ctx context.Context, item models.LineItem) (bool, error) {
	if item.Quantity <= 0 {
		return false, fmt.Errorf("invalid quantity %d", item.Quantity)
	}

	switch item.Kind {
	case models.KindProduct:
		if item.Variant == nil || item.Variant.VariantID == 0 {
			return false, fmt.Errorf("no variant selected for %q", item.Name)
		}
		if err := s.productRepo.AdjustVariantStock(ctx, item.Variant.VariantID, item.Quantity, repository.StockDecrement); err != nil {
			return false, fmt.Errorf("variant %d: %w", item.Variant.VariantID, err)
		}
		return true, nil

	case models.KindKit, models.KindCombo:
		components, err := s.components(ctx, item)
		if err != nil {
			return false, err
		}

		var errs []error
		for _, comp := range components {
			variantID := bundleVariantID(comp, item.IncludedProducts)
			if variantID == 0 {
				errs = append(errs, fmt.Errorf("no variant for product %d", comp.ProductID))
				continue
			}
			qty := max(comp.Quantity, 1) * item.Quantity
			if err := s.productRepo.AdjustVariantStock(ctx, variantID, qty, repository.StockDecrement); err != nil {
				errs = append(errs, fmt.Errorf("variant %d: %w", variantID, err))
			}
		}
		return len(errs) == 0, errors.Join(errs...)
	}

	return false, fmt.Errorf("unknown item kind %q", item.Kind)
}

func (s *orderService) components(ctx context.Context, item models.LineItem) ([]models.BundleComponent, error) {
	switch {
	case item.Kind == models.KindKit && item.KitID != nil:
		return s.bundleRepo.KitComponents(ctx, *item.KitID)
	case item.Kind == models.KindCombo && item.ComboID != nil:
		return s.bundleRepo.ComboComponents(ctx, *item.ComboID)
	}
	return nil, fmt.Errorf("%s %q has no bundle id", item.Kind, item.Name)
}

// bundleVariantID prefers the variant fixed on the join row, then the variant the
// customer selected for that product.
func bundleVariantID(comp models.BundleComponent, included []models.IncludedProduct) uint {
	if comp.VariantID != nil && *comp.VariantID != 0 {
		return *comp.VariantID
	}
	for _, ip := range included {
		if ip.ProductID == comp.ProductID && ip.Variant.VariantID != 0 {
			return ip.Variant.VariantID
		}
	}
	return 0
}

func (s *orderService) createShipment(ctx context.Context, order *models.Order) error {
	resp, err := s.shipping.CreateOrder(ctx, ShippingPayload(order, s.pickupLocation))
	if err != nil {
		return err
	}

	order.ShippingOrderID = fmt.Sprint(resp.OrderID)
	order.ShipmentID = fmt.Sprint(resp.ShipmentID)
	return s.orderRepo.UpdateFields(ctx, order.ID, map[string]interface{}{
		"shipping_order_id": order.ShippingOrderID,
		"shipment_id":       order.ShipmentID,
	})
}

// Parcel defaults sent with every shipping order, in cm and kg.
const (
	parcelLength  = 20
	parcelBreadth = 15
	parcelHeight  = 10
	parcelWeight  = 0.5
)

func ShippingPayload(order *models.Order, pickupLocation string) shiprocket.OrderPayload {
	first, last := splitName(order.CustomerName)
	addr := order.ShippingAddress
	country := addr.Country
	if country == "" {
		country = "India"
	}

	payload := shiprocket.OrderPayload{
		OrderID:             order.OrderNumber,
		OrderDate:           order.CreatedAt.Format("2006-01-02 15:04"),
		PickupLocation:      pickupLocation,
		BillingCustomerName: first,
		BillingLastName:     last,
		BillingAddress:      addr.Line1,
		BillingAddress2:     addr.Line2,
		BillingCity:         addr.City,
		BillingPincode:      addr.Pincode,
		BillingState:        addr.State,
		BillingCountry:      country,
		BillingEmail:        order.CustomerEmail,
		BillingPhone:        order.CustomerPhone,
		ShippingIsBilling:   true,
		PaymentMethod:       "Prepaid",
		SubTotal:            order.Total.InexactFloat64(),
		TotalDiscount:       order.DiscountAmount.InexactFloat64(),
		Length:              parcelLength,
		Breadth:             parcelBreadth,
		Height:              parcelHeight,
		Weight:              parcelWeight,
	}
	if order.PaymentStatus != string(models.PaymentPaid) {
		payload.PaymentMethod = "COD"
	}

	for _, item := range order.Items {
		payload.OrderItems = append(payload.OrderItems, shiprocket.OrderItem{
			Name:         shippingItemName(item),
			SKU:          shippingSKU(item),
			Units:        item.Quantity,
			SellingPrice: item.Price.InexactFloat64(),
		})
	}
	return payload
}

func shippingItemName(item models.LineItem) string {
	if item.Kind == models.KindProduct {
		return fmt.Sprintf("%s - %s", item.Name, item.VariantLabel())
	}
	return item.Name
}

func shippingSKU(item models.LineItem) string {
	switch {
	case item.KitID != nil:
		return fmt.Sprintf("KIT-%d", *item.KitID)
	case item.ComboID != nil:
		return fmt.Sprintf("COMBO-%d", *item.ComboID)
	case item.ProductID != nil && item.Variant != nil && item.Variant.VariantID != 0:
		return fmt.Sprintf("P%d-V%d", *item.ProductID, item.Variant.VariantID)
	case item.ProductID != nil:
		return fmt.Sprintf("P%d", *item.ProductID)
	}
	return item.Name
}

func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.orderRepo.GetByNumber(ctx, orderNumber)
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

func (s *orderService) ListOrdersByDateRange(ctx context.Context, startDate, endDate time.Time) ([]models.Order, error) {
	return s.orderRepo.GetByDateRange(ctx, startDate, endDate)
}

// UpdateStatus writes any known status; there is no transition table.
func (s *orderService) UpdateStatus(ctx context.Context, id uint, status string) error {
	if !models.OrderStatus(status).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	fields := map[string]interface{}{"status": status}
	if models.OrderStatus(status) == models.OrderPaymentFailed {
		fields["payment_status"] = string(models.PaymentFailed)
	}
	if err := s.orderRepo.UpdateFields(ctx, id, fields); err != nil {
		return err
	}

	s.log.Info("order status updated", zap.Uint("order_id", id), zap.String("status", status))
	return nil
}

func (s *orderService) AdjustStock(ctx context.Context, variantID uint, quantity int, op repository.StockOperation) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.productRepo.AdjustVariantStock(ctx, variantID, quantity, op); err != nil {
		return err
	}

	s.log.Info("stock adjusted",
		zap.Uint("variant_id", variantID),
		zap.Int("quantity", quantity),
		zap.String("operation", string(op)))
	return nil
}

func (s *orderService) GetSales(ctx context.Context, orderID uint) ([]models.SalesRecord, error) {
	return s.salesRepo.GetByOrderID(ctx, orderID)
}

func (s *orderService) SalesReport(ctx context.Context, startDate, endDate time.Time) (*SalesReport, error) {
	rows, err := s.salesRepo.SummarizeByItem(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	report := &SalesReport{From: startDate, To: endDate, Revenue: decimal.Zero, Items: rows}
	for i := range report.Items {
		report.Items[i].Revenue = report.Items[i].Revenue.Round(2)
		report.Revenue = report.Revenue.Add(report.Items[i].Revenue)
		report.Units += report.Items[i].Units
	}
	return report, nil
}
