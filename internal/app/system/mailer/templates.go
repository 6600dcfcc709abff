// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ApprovalEmailData holds data for the application-approved email.
type ApprovalEmailData struct {
	OrgName  string
	FullName string
	Email    string
	Password string // plaintext, shown once and never stored
	LoginURL string
}

// RejectionEmailData holds data for the application-rejected email.
type RejectionEmailData struct {
	OrgName  string
	FullName string
}

// BuildApprovalEmail creates the approval notice with the one-time
// credentials, with both HTML and text bodies.
func BuildApprovalEmail(data ApprovalEmailData) Email {
	return Email{
		To:       data.Email,
		Subject:  fmt.Sprintf("Your %s Application Has Been Approved", data.OrgName),
		TextBody: buildApprovalText(data),
		HTMLBody: buildApprovalHTML(data),
	}
}

// BuildRejectionEmail creates the rejection notice.
func BuildRejectionEmail(to string, data RejectionEmailData) Email {
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Your %s Application", data.OrgName),
		TextBody: buildRejectionText(data),
		HTMLBody: buildRejectionHTML(data),
	}
}

func buildApprovalText(data ApprovalEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Welcome to %s!\n\n", data.OrgName))
	buf.WriteString("We're pleased to inform you that your application has been approved.\n\n")
	buf.WriteString("Your account has been created with the following credentials:\n\n")
	buf.WriteString(fmt.Sprintf("Email: %s\n", data.Email))
	buf.WriteString(fmt.Sprintf("Password: %s\n\n", data.Password))
	buf.WriteString(fmt.Sprintf("Please log in at %s and change your password immediately.\n\n", data.LoginURL))
	buf.WriteString("If you didn't request this, please contact us immediately.\n")
	return buf.String()
}

func buildApprovalHTML(data ApprovalEmailData) string {
	tmpl := template.Must(template.New("approval").Parse(approvalHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

func buildRejectionText(data RejectionEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Dear %s,\n\n", data.FullName))
	buf.WriteString(fmt.Sprintf("Thank you for your interest in %s.\n\n", data.OrgName))
	buf.WriteString("After careful review, we are unable to offer you membership at this time.\n")
	buf.WriteString("You are welcome to apply again in a future intake.\n\n")
	buf.WriteString(fmt.Sprintf("Best regards,\n%s\n", data.OrgName))
	return buf.String()
}

func buildRejectionHTML(data RejectionEmailData) string {
	tmpl := template.Must(template.New("rejection").Parse(rejectionHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const approvalHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Application Approved</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">Welcome to {{.OrgName}}!</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                We're pleased to inform you that your application has been approved.
              </p>
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                Your account has been created with the following credentials:
              </p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 16px 24px; margin-bottom: 24px;">
                <p style="margin: 0 0 8px; font-size: 15px; color: #1f2937;"><strong>Email:</strong> {{.Email}}</p>
                <p style="margin: 0; font-size: 15px; color: #1f2937;"><strong>Password:</strong> <span style="font-family: 'Courier New', monospace;">{{.Password}}</span></p>
              </div>
              <p style="margin: 0 0 16px; font-size: 15px; color: #374151;">
                Please log in at <a href="{{.LoginURL}}" style="color: #4f46e5;">our website</a> and change your password immediately.
              </p>
              <p style="margin: 0; font-size: 13px; color: #9ca3af;">
                If you didn't request this, please contact us immediately.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                Best regards, {{.OrgName}}
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const rejectionHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Application Update</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Dear {{.FullName}},</p>
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                Thank you for your interest in {{.OrgName}}. After careful review, we are
                unable to offer you membership at this time.
              </p>
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">
                You are welcome to apply again in a future intake.
              </p>
              <p style="margin: 0; font-size: 15px; color: #374151;">Best regards,<br>{{.OrgName}}</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
