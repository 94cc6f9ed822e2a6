package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/airosofts/licensor/ports"
)

// Subjects of the provisioning notifications.
const (
	SubjectCredentials          = "Welcome to AiroSofts - Your Login Credentials"
	SubjectPurchaseConfirmation = "Thank You for Your Purchase - AiroSofts"
)

// Tags attached to provisioning notifications.
const (
	TagCredentials          = "credentials"
	TagPurchaseConfirmation = "purchase_confirmation"
)

// Templates renders the provisioning notifications.
type Templates struct {
	AppName      string
	DashboardURL string

	credentials *template.Template
	purchase    *template.Template
}

// NewTemplates parses the notification templates.
func NewTemplates(appName, dashboardURL string) (*Templates, error) {
	t := &Templates{AppName: appName, DashboardURL: dashboardURL}

	var err error
	t.credentials, err = template.New("credentials").Parse(credentialsEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse credentials template: %w", err)
	}
	t.purchase, err = template.New("purchase").Parse(purchaseEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse purchase template: %w", err)
	}
	return t, nil
}

// Credentials builds the message that gives a first-time buyer their login.
func (t *Templates) Credentials(to, password string) (ports.EmailMessage, error) {
	data := emailTemplateData{
		AppName:  t.AppName,
		Email:    to,
		Password: password,
		Link:     t.DashboardURL,
	}

	var htmlBuf bytes.Buffer
	if err := t.credentials.Execute(&htmlBuf, data); err != nil {
		return ports.EmailMessage{}, fmt.Errorf("execute credentials template: %w", err)
	}

	var textBuf strings.Builder
	textBuf.WriteString("Dear Valued Customer,\n\n")
	textBuf.WriteString(fmt.Sprintf("Thank you for choosing %s. Your login credentials:\n\n", t.AppName))
	textBuf.WriteString(fmt.Sprintf("Email: %s\nPassword: %s\n\n", to, password))
	textBuf.WriteString(fmt.Sprintf("Log in to your dashboard to access your purchased products: %s\n", t.DashboardURL))

	return ports.EmailMessage{
		To:       to,
		Subject:  SubjectCredentials,
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
		Tag:      TagCredentials,
	}, nil
}

// PurchaseConfirmation builds the thank-you message for a returning buyer.
func (t *Templates) PurchaseConfirmation(to string) (ports.EmailMessage, error) {
	data := emailTemplateData{
		AppName: t.AppName,
		Email:   to,
		Link:    t.DashboardURL,
	}

	var htmlBuf bytes.Buffer
	if err := t.purchase.Execute(&htmlBuf, data); err != nil {
		return ports.EmailMessage{}, fmt.Errorf("execute purchase template: %w", err)
	}

	var textBuf strings.Builder
	textBuf.WriteString("Dear Valued Customer,\n\n")
	textBuf.WriteString(fmt.Sprintf("Thank you for choosing %s again.\n\n", t.AppName))
	textBuf.WriteString("As an existing user you can log in to your dashboard to access your purchased products and manage your subscription: ")
	textBuf.WriteString(t.DashboardURL)
	textBuf.WriteString("\n")

	return ports.EmailMessage{
		To:       to,
		Subject:  SubjectPurchaseConfirmation,
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
		Tag:      TagPurchaseConfirmation,
	}, nil
}

// emailTemplateData holds data for email templates.
type emailTemplateData struct {
	AppName  string
	Email    string
	Password string
	Link     string
}

// -----------------------------------------------------------------------------
// Email Templates
// -----------------------------------------------------------------------------

var credentialsEmailTemplate = strings.TrimSpace(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Your Login Credentials</title>
    <style>
        body { font-family: 'Roboto', Arial, sans-serif; line-height: 1.8; color: #333; }
        .container { max-width: 700px; margin: 0 auto; border: 1px solid #e5e7eb; border-radius: 10px; overflow: hidden; }
        .header { background-color: #D74B3F; padding: 20px; text-align: center; color: white; font-size: 24px; font-weight: bold; }
        .content { padding: 30px; background-color: #ffffff; }
        .credentials { border: 1px solid #e5e7eb; border-radius: 8px; padding: 20px; background-color: #f9f9f9; margin-bottom: 30px; }
        .button { display: inline-block; background-color: #D74B3F; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold; }
        .footer { background-color: #f3f4f6; padding: 20px; text-align: center; font-size: 14px; color: #6b7280; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">Welcome to {{.AppName}}</div>
        <div class="content">
            <p>Dear Valued Customer,</p>
            <p>Thank you for choosing <strong>{{.AppName}}</strong> as your automation partner. We're excited to have you on board.</p>
            <div class="credentials">
                <h2 style="font-size: 18px; color: #D74B3F;">Your Login Credentials</h2>
                <p style="margin: 0;"><strong>Email:</strong> {{.Email}}</p>
                <p style="margin: 0;"><strong>Password:</strong> {{.Password}}</p>
            </div>
            <p>You can log in to your dashboard to access your purchased products:</p>
            <p style="text-align: center;">
                <a href="{{.Link}}" class="button">Login to Dashboard</a>
            </p>
        </div>
        <div class="footer">
            <p>If you did not request this email, please ignore it or contact our support team.</p>
        </div>
    </div>
</body>
</html>
`)

var purchaseEmailTemplate = strings.TrimSpace(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Thank You for Your Purchase</title>
    <style>
        body { font-family: 'Roboto', Arial, sans-serif; line-height: 1.8; color: #333; }
        .container { max-width: 700px; margin: 0 auto; border: 1px solid #e5e7eb; border-radius: 10px; overflow: hidden; }
        .header { background-color: #D74B3F; padding: 20px; text-align: center; color: white; font-size: 24px; font-weight: bold; }
        .content { padding: 30px; background-color: #ffffff; }
        .button { display: inline-block; background-color: #D74B3F; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold; }
        .footer { background-color: #f3f4f6; padding: 20px; text-align: center; font-size: 14px; color: #6b7280; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">Thank You for Your Purchase!</div>
        <div class="content">
            <p>Dear Valued Customer,</p>
            <p>Thank you for choosing <strong>{{.AppName}}</strong> again. We're excited to continue supporting your automation journey.</p>
            <p>As you are already an existing user, you can log in to your dashboard to access your purchased products and manage your subscription:</p>
            <p style="text-align: center;">
                <a href="{{.Link}}" class="button">Login to Dashboard</a>
            </p>
        </div>
        <div class="footer">
            <p>If you have any questions, please contact our support team.</p>
        </div>
    </div>
</body>
</html>
`)
