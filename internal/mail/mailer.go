package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"

	"posapi/internal/config"
	"posapi/internal/model"
	"posapi/internal/receipt"
)

// NotificationError wraps a transport or authentication failure of the mail
// channel. It is fatal to the pipeline invocation: the purchaser notification
// is the primary deliverable and is never masked by a fallback.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string { return "send receipt email: " + e.Err.Error() }
func (e *NotificationError) Unwrap() error { return e.Err }

// Mailer delivers a receipt to the purchaser with the rendered document
// attached.
type Mailer interface {
	SendReceipt(ctx context.Context, to string, doc *model.ReceiptDocument, req model.ReceiptRequest) error
}

// summaryTmpl renders the purchase summary table mirroring the receipt lines.
var summaryTmpl = template.Must(template.New("summary").Parse(`<p>Hi {{.CustomerName}},</p>
<p>Thank you for your purchase at {{.StoreName}}. Your receipt is attached.</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Product</th><th>Quantity</th><th>Price</th><th>Total Price</th></tr>
{{- range .Rows}}
  <tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Total}}</td></tr>
{{- end}}
</table>
<p>Total: <strong>{{.GrandTotal}}</strong> &middot; Payment method: {{.PaymentMethod}}</p>
<p>Transaction {{.TransactionID}}</p>`))

type summaryRow struct {
	ProductName string
	Quantity    int
	Price       string
	Total       string
}

type summaryData struct {
	CustomerName  string
	StoreName     string
	Rows          []summaryRow
	GrandTotal    string
	PaymentMethod string
	TransactionID string
}

// buildSummaryHTML renders the email body. Line items come from the shared
// receipt.Lines normalization so the table always matches the PDF.
func buildSummaryHTML(req model.ReceiptRequest, storeName, currency string) (string, error) {
	data := summaryData{
		CustomerName:  req.CustomerName,
		StoreName:     storeName,
		GrandTotal:    receipt.FormatMoney(currency, req.TotalPrice),
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	}
	for _, l := range receipt.Lines(req) {
		data.Rows = append(data.Rows, summaryRow{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       receipt.FormatMoney(currency, l.UnitPrice),
			Total:       receipt.FormatMoney(currency, l.Total),
		})
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// smtpMailer sends receipts over SMTP. The client is constructed once and
// injected; there is no package-level transporter state.
type smtpMailer struct {
	client    *gomail.Client
	from      string
	storeName string
	currency  string
}

// NewSMTPMailer builds the SMTP-backed Mailer. Port 465 uses implicit TLS.
func NewSMTPMailer(cfg config.SMTPConfig, rcfg config.ReceiptConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp credentials are required")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &smtpMailer{
		client:    client,
		from:      from,
		storeName: rcfg.StoreName,
		currency:  rcfg.CurrencySymbol,
	}, nil
}

// SendReceipt mails the purchase summary with the receipt PDF attached. Any
// failure, from message assembly to transport, surfaces as NotificationError.
func (m *smtpMailer) SendReceipt(ctx context.Context, to string, doc *model.ReceiptDocument, req model.ReceiptRequest) error {
	body, err := buildSummaryHTML(req, m.storeName, m.currency)
	if err != nil {
		return &NotificationError{Err: err}
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return &NotificationError{Err: err}
	}
	if err := msg.To(to); err != nil {
		return &NotificationError{Err: err}
	}
	msg.Subject(fmt.Sprintf("Your receipt from %s", m.storeName))
	msg.SetBodyString(gomail.TypeTextHTML, body)
	msg.AttachFile(doc.Path, gomail.WithFileName(doc.Filename))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}
