package mail

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Subject     string
	FromAddress string
	FromName    string
	ToAddress   string
	ToName      string
	Body        string
}

type InvalidMessageError struct {
	Reason string
}

func (err InvalidMessageError) Error() string {
	return "invalid message: " + err.Reason
}

func (msg Message) validate() error {
	if msg.FromAddress == "" {
		return &InvalidMessageError{Reason: "missing sender address"}
	}

	if msg.ToAddress == "" {
		return &InvalidMessageError{Reason: "missing recipient address"}
	}

	if strings.ContainsAny(msg.Subject, "\r\n") {
		return &InvalidMessageError{Reason: "subject contains a line break"}
	}

	return nil
}

// Bytes renders msg as a plain text RFC 5322 message with a quoted-printable body.
func (msg Message) Bytes(date time.Time) ([]byte, error) {
	err := msg.validate()
	if err != nil {
		return nil, err
	}

	from := netmail.Address{Name: msg.FromName, Address: msg.FromAddress}
	to := netmail.Address{Name: msg.ToName, Address: msg.ToAddress}

	var buf bytes.Buffer

	writeHeader(&buf, "From", from.String())
	writeHeader(&buf, "To", to.String())
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&buf, "Date", date.Format(time.RFC1123Z))
	writeHeader(&buf, "Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(msg.FromAddress)))
	writeHeader(&buf, "MIME-Version", "1.0")
	writeHeader(&buf, "Content-Type", "text/plain; charset=UTF-8")
	writeHeader(&buf, "Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)

	_, err = qp.Write([]byte(strings.ReplaceAll(msg.Body, "\n", "\r\n")))
	if err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}

	err = qp.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to close body encoder: %w", err)
	}

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

func domainOf(address string) string {
	_, domain, found := strings.Cut(address, "@")
	if !found || domain == "" {
		return "localhost"
	}

	return domain
}
