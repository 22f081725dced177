package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/analysis"
	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/models"
)

func TestChatService_Upload(t *testing.T) {
	f := newFixture(t)
	svc := f.chatService(t)
	ctx := context.Background()

	content := append([]byte("\xef\xbb\xbf"), sampleExport...)
	session, err := svc.Upload(ctx, f.user, "WhatsApp Chat.txt", content, testClient)
	require.NoError(t, err)

	assert.Equal(t, 3, session.TotalMessages)
	assert.Equal(t, models.StringList{"Alex", "Sam"}, session.Participants)
	assert.Equal(t, f.user.ID, session.UserID)

	detail, err := svc.Detail(ctx, f.user.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 3)
	assert.False(t, detail.Messages[0].IsUser)
	assert.True(t, detail.Messages[1].IsUser)
	assert.Equal(t, "We should not argue about work again", detail.Messages[2].Content)

	entries := f.store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, string(audit.EventChatUpload), entries[0].Action)
	assert.Equal(t, &session.ID, entries[0].ResourceID)
}

func TestChatService_UploadRejects(t *testing.T) {
	f := newFixture(t)
	svc := f.chatService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, f.user, "chat.zip", []byte(sampleExport), testClient)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = svc.Upload(ctx, f.user, "chat.txt", []byte{0xff, 0xfe, 0xfd}, testClient)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = svc.Upload(ctx, f.user, "chat.txt", []byte("hello\nworld\n"), testClient)
	assert.ErrorIs(t, err, analysis.ErrNoMessagesFound)

	sessions, err := svc.List(ctx, f.user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestChatService_OwnershipAndPaging(t *testing.T) {
	f := newFixture(t)
	svc := f.chatService(t)
	ctx := context.Background()

	session, err := svc.Upload(ctx, f.user, "chat.txt", []byte(sampleExport), testClient)
	require.NoError(t, err)

	page, err := svc.Messages(ctx, f.user.ID, session.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Love you too", page[0].Content)

	for _, bad := range []struct{ limit, offset int }{{0, 0}, {-1, 0}, {MaxChatPageLimit + 1, 0}, {10, -1}} {
		_, err = svc.Messages(ctx, f.user.ID, session.ID, bad.limit, bad.offset)
		assert.ErrorIs(t, err, ErrValidation, "limit=%d offset=%d", bad.limit, bad.offset)
		_, err = svc.List(ctx, f.user.ID, bad.limit, bad.offset)
		assert.ErrorIs(t, err, ErrValidation, "limit=%d offset=%d", bad.limit, bad.offset)
	}

	stranger := uuid.New()
	_, err = svc.Detail(ctx, stranger, session.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)
	_, err = svc.Messages(ctx, stranger, session.ID, 10, 0)
	assert.ErrorIs(t, err, ErrChatNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, stranger, session.ID, testClient), ErrChatNotFound)

	require.NoError(t, svc.Delete(ctx, f.user.ID, session.ID, testClient))
	_, err = svc.Get(ctx, f.user.ID, session.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestChatService_Export(t *testing.T) {
	f := newFixture(t)
	svc := f.chatService(t)
	ctx := context.Background()

	session, err := svc.Upload(ctx, f.user, "chat.txt", []byte(sampleExport), testClient)
	require.NoError(t, err)

	var yamlOut bytes.Buffer
	require.NoError(t, svc.Export(ctx, f.user.ID, session.ID, "YAML", &yamlOut))
	assert.Contains(t, yamlOut.String(), "filename: chat.txt")
	assert.Contains(t, yamlOut.String(), "sender: Alex")
	assert.Contains(t, yamlOut.String(), "is_user: true")

	var jsonOut bytes.Buffer
	require.NoError(t, svc.Export(ctx, f.user.ID, session.ID, "", &jsonOut))
	var decoded struct {
		Filename string `json:"filename"`
		Messages []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &decoded))
	assert.Equal(t, "chat.txt", decoded.Filename)
	assert.Len(t, decoded.Messages, 3)

	err = svc.Export(ctx, f.user.ID, session.ID, "csv", &jsonOut)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestChatService_Insights(t *testing.T) {
	f := newFixture(t)
	svc := f.chatService(t)
	ctx := context.Background()

	session, err := svc.Upload(ctx, f.user, "chat.txt", []byte(sampleExport), testClient)
	require.NoError(t, err)

	report, err := svc.Insights(ctx, f.user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "3", report.CommunicationPatterns.TotalMessages)

	again, err := svc.Insights(ctx, f.user.ID, session.ID)
	require.NoError(t, err)
	assert.Same(t, report, again)

	_, err = svc.Insights(ctx, uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)

	empty := &models.ChatSession{ID: uuid.New(), UserID: f.user.ID, Filename: "empty.txt"}
	require.NoError(t, f.store.Chats().CreateWithMessages(ctx, empty, nil))
	_, err = svc.Insights(ctx, f.user.ID, empty.ID)
	assert.ErrorIs(t, err, analysis.ErrEmptyInput)
}
