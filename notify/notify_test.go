package notify_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nasermirzaei89/labbook/discuss"
	"github.com/nasermirzaei89/labbook/mail"
	"github.com/nasermirzaei89/labbook/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	people map[int64]*notify.Person
	owners map[int64]int64
}

func (d *stubDirectory) Person(_ context.Context, userID int64) (*notify.Person, error) {
	person, ok := d.people[userID]
	if !ok {
		return nil, errors.New("person not found")
	}

	return person, nil
}

func (d *stubDirectory) EntityOwner(ctx context.Context, entity discuss.Entity) (*notify.Person, error) {
	ownerID, ok := d.owners[entity.ID]
	if !ok {
		return nil, errors.New("entity not found")
	}

	return d.Person(ctx, ownerID)
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}

	m.messages = append(m.messages, msg)

	return 1, nil
}

func newDirectory() *stubDirectory {
	return &stubDirectory{
		people: map[int64]*notify.Person{
			7: {ID: 7, Email: "marie@example.com", FullName: "Marie Curie"},
			9: {ID: 9, Email: "pierre@example.com", FullName: "Pierre Curie"},
		},
		owners: map[int64]int64{42: 7},
	}
}

var enabledConfig = notify.Config{
	Enabled: true,
	From:    "lab@example.com",
	AppName: "labbook",
}

func TestDispatcher_AlertOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name        string
		cfg         notify.Config
		entity      discuss.Entity
		commenterID int64
		wantCount   int
		wantSends   int
	}{
		{
			name:        "item is never notified",
			cfg:         enabledConfig,
			entity:      discuss.ItemEntity(42),
			commenterID: 9,
			wantCount:   0,
			wantSends:   0,
		},
		{
			name:        "mail disabled",
			cfg:         notify.Config{Enabled: false},
			entity:      discuss.ExperimentEntity(42),
			commenterID: 9,
			wantCount:   0,
			wantSends:   0,
		},
		{
			name:        "owner comments on own experiment",
			cfg:         enabledConfig,
			entity:      discuss.ExperimentEntity(42),
			commenterID: 7,
			wantCount:   1,
			wantSends:   0,
		},
		{
			name:        "other user comments on experiment",
			cfg:         enabledConfig,
			entity:      discuss.ExperimentEntity(42),
			commenterID: 9,
			wantCount:   1,
			wantSends:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mailer := &recordingMailer{}

			dispatcher, err := notify.NewDispatcher(tt.cfg, newDirectory(), mailer)
			require.NoError(t, err)

			count, err := dispatcher.AlertOwner(ctx, tt.entity, tt.commenterID, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
			assert.Len(t, mailer.messages, tt.wantSends)
		})
	}
}

func TestDispatcher_Message(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("english with request url", func(t *testing.T) {
		t.Parallel()

		mailer := &recordingMailer{}

		dispatcher, err := notify.NewDispatcher(enabledConfig, newDirectory(), mailer)
		require.NoError(t, err)

		_, err = dispatcher.AlertOwner(ctx, discuss.ExperimentEntity(42), 9, "https://lab.example.com/")
		require.NoError(t, err)
		require.Len(t, mailer.messages, 1)

		msg := mailer.messages[0]
		assert.Equal(t, "[labbook] New comment posted", msg.Subject)
		assert.Equal(t, "lab@example.com", msg.FromAddress)
		assert.Equal(t, "labbook", msg.FromName)
		assert.Equal(t, "marie@example.com", msg.ToAddress)
		assert.Equal(t, "Marie Curie", msg.ToName)
		assert.True(t, strings.HasPrefix(
			msg.Body,
			"Hi. Pierre Curie left a comment on your experiment. Have a look: https://lab.example.com/experiments/42",
		))
		assert.Contains(t, msg.Body, "\n\n~~~\nSent from labbook\n")
	})

	t.Run("french", func(t *testing.T) {
		t.Parallel()

		cfg := enabledConfig
		cfg.Language = "fr-CA"
		cfg.FromName = "Cahier de labo"

		mailer := &recordingMailer{}

		dispatcher, err := notify.NewDispatcher(cfg, newDirectory(), mailer)
		require.NoError(t, err)

		_, err = dispatcher.AlertOwner(ctx, discuss.ExperimentEntity(42), 9, "")
		require.NoError(t, err)
		require.Len(t, mailer.messages, 1)

		msg := mailer.messages[0]
		assert.Equal(t, "[labbook] Nouveau commentaire", msg.Subject)
		assert.Equal(t, "Cahier de labo", msg.FromName)
		assert.Contains(t, msg.Body, "Bonjour. Pierre Curie a laissé un commentaire")
	})
}

func TestDispatcher_Link(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name           string
		configured     string
		requestBaseURL string
		want           string
	}{
		{
			name:           "configured address wins over a forged host",
			configured:     "https://lab.example.com",
			requestBaseURL: "https://evil.example.net",
			want:           "https://lab.example.com/experiments/42",
		},
		{
			name:       "configured address without request address",
			configured: "https://lab.example.com/",
			want:       "https://lab.example.com/experiments/42",
		},
		{
			name:           "request address when nothing is configured",
			requestBaseURL: "http://127.0.0.1:8080",
			want:           "http://127.0.0.1:8080/experiments/42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := enabledConfig
			cfg.BaseURL = tt.configured

			mailer := &recordingMailer{}

			dispatcher, err := notify.NewDispatcher(cfg, newDirectory(), mailer)
			require.NoError(t, err)

			_, err = dispatcher.AlertOwner(ctx, discuss.ExperimentEntity(42), 9, tt.requestBaseURL)
			require.NoError(t, err)
			require.Len(t, mailer.messages, 1)
			assert.Contains(t, mailer.messages[0].Body, tt.want)
			assert.NotContains(t, mailer.messages[0].Body, "evil")
		})
	}
}

func TestDispatcher_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown commenter", func(t *testing.T) {
		t.Parallel()

		dispatcher, err := notify.NewDispatcher(enabledConfig, newDirectory(), &recordingMailer{})
		require.NoError(t, err)

		_, err = dispatcher.AlertOwner(ctx, discuss.ExperimentEntity(42), 100, "")
		require.Error(t, err)
	})

	t.Run("mailer failure", func(t *testing.T) {
		t.Parallel()

		dispatcher, err := notify.NewDispatcher(enabledConfig, newDirectory(), &recordingMailer{err: errors.New("refused")})
		require.NoError(t, err)

		count, err := dispatcher.AlertOwner(ctx, discuss.ExperimentEntity(42), 9, "")
		require.Error(t, err)
		assert.Zero(t, count)
	})

	t.Run("enabled without sender", func(t *testing.T) {
		t.Parallel()

		_, err := notify.NewDispatcher(notify.Config{Enabled: true}, newDirectory(), &recordingMailer{})
		require.ErrorIs(t, err, notify.ErrMissingSender)
	})

	t.Run("unsupported language", func(t *testing.T) {
		t.Parallel()

		cfg := enabledConfig
		cfg.Language = "not a language"

		_, err := notify.NewDispatcher(cfg, newDirectory(), &recordingMailer{})

		var langErr *notify.UnsupportedLanguageError
		require.ErrorAs(t, err, &langErr)
	})
}
