package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
)

// EmailSettings holds the SMTP configuration for report delivery.
type EmailSettings struct {
	Host       string
	Port       int
	User       string
	Pass       string
	Recipients []string
}

// SendSummary emails the generated report file as an attachment.
func SendSummary(settings EmailSettings, subject, attachmentPath string) error {
	if settings.Host == "" {
		return fmt.Errorf("SMTP host is not configured")
	}
	if len(settings.Recipients) == 0 {
		return fmt.Errorf("no report recipients configured")
	}

	attachment, err := os.ReadFile(attachmentPath)
	if err != nil {
		return fmt.Errorf("failed to read report file %s: %w", attachmentPath, err)
	}

	msg := buildMessage(settings, subject, filepath.Base(attachmentPath), attachment)

	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	auth := smtp.PlainAuth("", settings.User, settings.Pass, settings.Host)

	if err := smtp.SendMail(addr, auth, settings.User, settings.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

// buildMessage assembles a multipart MIME message with one CSV attachment.
func buildMessage(settings EmailSettings, subject, filename string, attachment []byte) []byte {
	const boundary = "rental-harvester-report"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", settings.User)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(settings.Recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString("Weekly rental listing summary attached.\r\n\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/csv\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76] + "\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded + "\r\n")
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return buf.Bytes()
}
