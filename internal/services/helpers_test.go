package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/testutil"
)

const sampleExport = "1/2/2023, 9:05 PM - Alex: I love you so much, this is the first time I feel this way about anyone\n" +
	"1/2/2023, 9:06 pm - Sam: Love you too\n" +
	"this line is a continuation and gets skipped\n" +
	"32/2/2023, 9:07 PM - Sam: bad day number\n" +
	"2/2/2023, 10:00:15 AM - Sam: We should not argue about work again\n"

var testClient = auth.ClientInfo{IPAddress: "127.0.0.1", UserAgent: "go-test"}

type fixture struct {
	store *testutil.Store
	audit *audit.Service
	user  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	logger, _ := testutil.Logger()
	return &fixture{
		store: store,
		audit: audit.NewService(store.Audit(), logger),
		user:  &models.User{ID: uuid.New(), Name: "Sam", Email: "sam@example.com", IsActive: true},
	}
}

func (f *fixture) chatService(t *testing.T) *ChatService {
	t.Helper()
	logger, _ := testutil.Logger()
	return NewChatService(f.store.Chats(), f.store.Messages(), f.audit, logger)
}
