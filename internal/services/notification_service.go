package services

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/pkg/mailer"
)

var customerTemplate = template.Must(template.New("customer").Parse(`Hi {{.CustomerName}},

Thank you for your order {{.OrderNumber}}.

{{range .Items}}- {{.Name}}{{with .Variant}} ({{.Label}}){{end}} x {{.Quantity}}: Rs. {{.TotalPrice.StringFixed 2}}
{{end}}
Subtotal: Rs. {{.Subtotal.StringFixed 2}}
{{- if .DiscountAmount.IsPositive}}
Discount{{with .CouponCode}} ({{.}}){{end}}: -Rs. {{.DiscountAmount.StringFixed 2}}
{{- end}}
Total: Rs. {{.Total.StringFixed 2}}

We will let you know when it ships.
`))

var adminTemplate = template.Must(template.New("admin").Parse(`New order {{.OrderNumber}} ({{.PublicID}})

Customer: {{.CustomerName}} <{{.CustomerEmail}}> {{.CustomerPhone}}
Ship to: {{.ShippingAddress.Line1}}{{with .ShippingAddress.Line2}}, {{.}}{{end}}, {{.ShippingAddress.City}}, {{.ShippingAddress.State}} {{.ShippingAddress.Pincode}}
Payment: {{.PaymentStatus}} {{.PaymentID}}

{{range .Items}}- [{{.Kind}}] {{.Name}} x {{.Quantity}}{{range .IncludedProducts}}
    * {{.Name}} ({{.Variant.Label}}) x {{.Quantity}}{{end}}
{{end}}
Total: Rs. {{.Total.StringFixed 2}}
`))

var messageTemplate = template.Must(template.New("message").Parse(
	`Hi {{.CustomerName}}, your order {{.OrderNumber}} for Rs. {{.Total.StringFixed 2}} is confirmed. We will message you again when it ships.`))

type Messenger interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
	SendAdminNotification(ctx context.Context, order *models.Order) error
	SendOrderMessage(ctx context.Context, order *models.Order) error
	PublishOrderCompleted(ctx context.Context, order *models.Order, failures int) error
}

type notificationService struct {
	mail       mailer.Sender
	messenger  Messenger
	publisher  events.Publisher
	adminEmail string
}

// NewNotificationService accepts a nil messenger when no WhatsApp gateway is configured.
func NewNotificationService(mail mailer.Sender, messenger Messenger, publisher events.Publisher, adminEmail string) NotificationService {
	return &notificationService{mail: mail, messenger: messenger, publisher: publisher, adminEmail: adminEmail}
}

func (s *notificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if order.CustomerEmail == "" {
		return nil
	}
	body, err := render(customerTemplate, order)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Order confirmed: %s", order.OrderNumber)
	return s.mail.Send(ctx, []string{order.CustomerEmail}, subject, body)
}

func (s *notificationService) SendAdminNotification(ctx context.Context, order *models.Order) error {
	if s.adminEmail == "" {
		return nil
	}
	body, err := render(adminTemplate, order)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New order %s - Rs. %s", order.OrderNumber, order.Total.StringFixed(2))
	return s.mail.Send(ctx, []string{s.adminEmail}, subject, body)
}

func (s *notificationService) SendOrderMessage(ctx context.Context, order *models.Order) error {
	if s.messenger == nil || order.CustomerPhone == "" {
		return nil
	}
	body, err := render(messageTemplate, order)
	if err != nil {
		return err
	}
	return s.messenger.SendTextMessage(ctx, order.CustomerPhone, body)
}

func (s *notificationService) PublishOrderCompleted(ctx context.Context, order *models.Order, failures int) error {
	return s.publisher.PublishOrderCompleted(ctx, events.OrderCompleted{
		OrderID:     order.ID,
		PublicID:    order.PublicID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total.StringFixed(2),
		ItemCount:   len(order.Items),
		Failures:    failures,
		CompletedAt: time.Now().UTC(),
	})
}

func render(tmpl *template.Template, order *models.Order) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
