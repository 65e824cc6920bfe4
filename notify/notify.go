package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/nasermirzaei89/labbook/mail"
	"golang.org/x/text/message"
)

// UnconfiguredSender is the placeholder sender address of a fresh install.
// Configuration loaders treat it as "mail disabled".
const UnconfiguredSender = "notconfigured@example.com"

type Config struct {
	Enabled  bool
	From     string
	FromName string

	// BaseURL is the public address used for links. When empty, links use the
	// address the comment was posted to.
	BaseURL string

	// Language of the notification text, as a BCP 47 tag. Defaults to English.
	Language string
	AppName  string
}

type Person struct {
	ID       int64
	Email    string
	FullName string
}

// Directory resolves the people involved in a notification.
type Directory interface {
	Person(ctx context.Context, userID int64) (person *Person, err error)
	EntityOwner(ctx context.Context, entity discuss.Entity) (owner *Person, err error)
}

type Dispatcher struct {
	cfg       Config
	directory Directory
	mailer    mail.Mailer
	printer   *message.Printer
}

var _ discuss.Notifier = (*Dispatcher)(nil)

var ErrMissingSender = errors.New("notifications are enabled without a sender address")

func NewDispatcher(cfg Config, directory Directory, mailer mail.Mailer) (*Dispatcher, error) {
	if cfg.Enabled && cfg.From == "" {
		return nil, ErrMissingSender
	}

	if cfg.AppName == "" {
		cfg.AppName = "labbook"
	}

	if cfg.FromName == "" {
		cfg.FromName = cfg.AppName
	}

	printer, err := newPrinter(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to create message printer: %w", err)
	}

	return &Dispatcher{
		cfg:       cfg,
		directory: directory,
		mailer:    mailer,
		printer:   printer,
	}, nil
}

// AlertOwner emails the owner of entity about a new comment by commenterID.
// It returns 0 when the entity is not notifiable or mail is disabled, and 1
// without sending when the commenter owns the entity.
func (d *Dispatcher) AlertOwner(ctx context.Context, entity discuss.Entity, commenterID int64, baseURL string) (int, error) {
	if !entity.Notifiable || !d.cfg.Enabled {
		return 0, nil
	}

	commenter, err := d.directory.Person(ctx, commenterID)
	if err != nil {
		return 0, fmt.Errorf("failed to find commenter: %w", err)
	}

	owner, err := d.directory.EntityOwner(ctx, entity)
	if err != nil {
		return 0, fmt.Errorf("failed to find entity owner: %w", err)
	}

	if owner.ID == commenterID {
		return 1, nil
	}

	msg := d.buildMessage(commenter, owner, d.link(baseURL, entity))

	sent, err := d.mailer.Send(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}

	slog.InfoContext(ctx, "comment notification sent", "kind", entity.Kind, "itemId", entity.ID, "ownerId", owner.ID)

	return sent, nil
}

func (d *Dispatcher) link(requestBaseURL string, entity discuss.Entity) string {
	baseURL := d.cfg.BaseURL
	if baseURL == "" {
		baseURL = requestBaseURL
	}

	return strings.TrimRight(baseURL, "/") + entity.ViewPath()
}

func (d *Dispatcher) buildMessage(commenter, owner *Person, link string) mail.Message {
	body := d.printer.Sprintf(bodyKey, commenter.FullName, link) +
		"\n\n~~~\n" +
		d.printer.Sprintf(footerKey, d.cfg.AppName) + "\n"

	return mail.Message{
		Subject:     d.printer.Sprintf(subjectKey, d.cfg.AppName),
		FromAddress: d.cfg.From,
		FromName:    d.cfg.FromName,
		ToAddress:   owner.Email,
		ToName:      owner.FullName,
		Body:        body,
	}
}
