// Package testutil holds in-memory repository fakes for service and handler
// tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/models"
	"github.com/afterus/afterus-backend/internal/repository"
)

// Store backs every fake with one set of maps so cross-entity queries
// (message counts per user) work
type Store struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	sessions      map[uuid.UUID]*models.UserSession
	audit         []*models.AuditLog
	chats         map[uuid.UUID]*models.ChatSession
	messages      map[uuid.UUID][]models.ChatMessage
	memories      map[uuid.UUID]*models.Memory
	noContact     map[uuid.UUID]*models.NoContactDay
	activities    map[uuid.UUID]*models.ClosureActivity
	personalities map[uuid.UUID]*models.AIPersonality
	journal       map[uuid.UUID]*models.JournalEntry

	// FailNext, when set, is returned by the next write and then cleared
	FailNext error
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		users:         map[uuid.UUID]*models.User{},
		sessions:      map[uuid.UUID]*models.UserSession{},
		chats:         map[uuid.UUID]*models.ChatSession{},
		messages:      map[uuid.UUID][]models.ChatMessage{},
		memories:      map[uuid.UUID]*models.Memory{},
		noContact:     map[uuid.UUID]*models.NoContactDay{},
		activities:    map[uuid.UUID]*models.ClosureActivity{},
		personalities: map[uuid.UUID]*models.AIPersonality{},
		journal:       map[uuid.UUID]*models.JournalEntry{},
	}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Users returns a repository.UserRepository view
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Sessions returns a repository.UserSessionRepository view
func (s *Store) Sessions() repository.UserSessionRepository { return (*sessionRepo)(s) }

// Audit returns a repository.AuditRepository view
func (s *Store) Audit() repository.AuditRepository { return (*auditRepo)(s) }

// Chats returns a repository.ChatSessionRepository view
func (s *Store) Chats() repository.ChatSessionRepository { return (*chatRepo)(s) }

// Messages returns a repository.MessageRepository view
func (s *Store) Messages() repository.MessageRepository { return (*messageRepo)(s) }

// Memories returns a repository.MemoryRepository view
func (s *Store) Memories() repository.MemoryRepository { return (*memoryRepo)(s) }

// NoContact returns a repository.NoContactRepository view
func (s *Store) NoContact() repository.NoContactRepository { return (*noContactRepo)(s) }

// Activities returns a repository.ClosureActivityRepository view
func (s *Store) Activities() repository.ClosureActivityRepository { return (*activityRepo)(s) }

// Personalities returns a repository.AIPersonalityRepository view
func (s *Store) Personalities() repository.AIPersonalityRepository { return (*personalityRepo)(s) }

// Journal returns a repository.JournalRepository view
func (s *Store) Journal() repository.JournalRepository { return (*journalRepo)(s) }

// AuditEntries returns a copy of everything logged so far
func (s *Store) AuditEntries() []*models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AuditLog(nil), s.audit...)
}

// SessionCount reports stored auth sessions
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.users[user.ID] = clone(user)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, user *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = clone(user)
	return nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type sessionRepo Store

func (r *sessionRepo) Create(_ context.Context, session *models.UserSession) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = clone(session)
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, id uuid.UUID) (*models.UserSession, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(sess), nil
}

func (r *sessionRepo) Update(_ context.Context, session *models.UserSession) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	s.sessions[session.ID] = clone(session)
	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.RefreshExpiresAt.Before(now) || sess.RevokedAt != nil {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

type auditRepo Store

func (r *auditRepo) Log(_ context.Context, entry *models.AuditLog) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, clone(entry))
	return nil
}

func (r *auditRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]*models.AuditLog, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.AuditLog{}
	for i := len(s.audit) - 1; i >= 0; i-- {
		if e := s.audit[i]; e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return page(out, limit, 0), nil
}

func (r *auditRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.audit[:0]
	for _, e := range s.audit {
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	n := int64(len(s.audit) - len(kept))
	s.audit = kept
	return n, nil
}

type chatRepo Store

func (r *chatRepo) CreateWithMessages(_ context.Context, session *models.ChatSession, messages []models.ParsedMessage) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.TotalMessages = len(messages)
	rows := make([]models.ChatMessage, len(messages))
	for i, m := range messages {
		rows[i] = models.ChatMessage{ID: uuid.New(), SessionID: session.ID, Seq: i, ParsedMessage: m}
	}
	s.chats[session.ID] = clone(session)
	s.messages[session.ID] = rows
	return nil
}

func (r *chatRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.ChatSession, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (r *chatRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.ChatSession{}
	for _, c := range s.chats {
		if c.UserID == userID {
			out = append(out, clone(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return page(out, limit, offset), nil
}

func (r *chatRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.chats, id)
	delete(s.messages, id)
	return nil
}

func (r *chatRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.chats {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

type messageRepo Store

func (r *messageRepo) ListBySession(_ context.Context, sessionID uuid.UUID, limit, offset int) ([]models.ChatMessage, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := append([]models.ChatMessage(nil), s.messages[sessionID]...)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.Before(rows[j].Timestamp)
		}
		return rows[i].Seq < rows[j].Seq
	})
	return page(rows, limit, offset), nil
}

func (r *messageRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.chats {
		if c.UserID == userID {
			n += len(s.messages[id])
		}
	}
	return n, nil
}

type memoryRepo Store

func (r *memoryRepo) Create(_ context.Context, memory *models.Memory) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.insertMemory(memory, time.Now())
	return nil
}

func (s *Store) insertMemory(m *models.Memory, now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.memories[m.ID] = clone(m)
}

func (r *memoryRepo) CreateBatch(_ context.Context, memories []*models.Memory) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	now := time.Now()
	for _, m := range memories {
		s.insertMemory(m, now)
	}
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Memory, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memories[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return clone(m), nil
}

func (r *memoryRepo) List(_ context.Context, userID uuid.UUID, filter models.MemoryFilter) ([]*models.Memory, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Memory{}
	for _, m := range s.memories {
		if m.UserID != userID || (filter.Type != nil && m.Type != *filter.Type) {
			continue
		}
		out = append(out, clone(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *memoryRepo) Update(_ context.Context, memory *models.Memory) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memories[memory.ID]
	if !ok || m.UserID != memory.UserID {
		return repository.ErrNotFound
	}
	memory.UpdatedAt = time.Now()
	s.memories[memory.ID] = clone(memory)
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memories[id]
	if !ok || m.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.memories, id)
	return nil
}

func (r *memoryRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.memories {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Recent(_ context.Context, userID uuid.UUID, limit int) ([]*models.Memory, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Memory{}
	for _, m := range s.memories {
		if m.UserID == userID {
			out = append(out, clone(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

func (r *memoryRepo) LatestCreatedAt(_ context.Context, userID uuid.UUID) (*time.Time, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *time.Time
	for _, m := range s.memories {
		if m.UserID == userID && (latest == nil || m.CreatedAt.After(*latest)) {
			t := m.CreatedAt
			latest = &t
		}
	}
	return latest, nil
}

type noContactRepo Store

func (r *noContactRepo) Create(_ context.Context, day *models.NoContactDay) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	key := day.Date.Format(time.DateOnly)
	for _, d := range s.noContact {
		if d.UserID == day.UserID && d.Date.Format(time.DateOnly) == key {
			return repository.ErrDuplicate
		}
	}
	if day.ID == uuid.Nil {
		day.ID = uuid.New()
	}
	if day.CreatedAt.IsZero() {
		day.CreatedAt = time.Now()
	}
	s.noContact[day.ID] = clone(day)
	return nil
}

func (r *noContactRepo) List(_ context.Context, userID uuid.UUID, dates models.DateRange) ([]*models.NoContactDay, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.NoContactDay{}
	for _, d := range s.noContact {
		if d.UserID != userID {
			continue
		}
		day := d.Date.Format(time.DateOnly)
		if dates.Start != nil && day < dates.Start.Format(time.DateOnly) {
			continue
		}
		if dates.End != nil && day > dates.End.Format(time.DateOnly) {
			continue
		}
		out = append(out, clone(d))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *noContactRepo) Recent(_ context.Context, userID uuid.UUID, limit int) ([]*models.NoContactDay, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.NoContactDay{}
	for _, d := range s.noContact {
		if d.UserID == userID {
			out = append(out, clone(d))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, 0), nil
}

func (r *noContactRepo) LatestCreatedAt(_ context.Context, userID uuid.UUID) (*time.Time, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *time.Time
	for _, d := range s.noContact {
		if d.UserID == userID && (latest == nil || d.CreatedAt.After(*latest)) {
			t := d.CreatedAt
			latest = &t
		}
	}
	return latest, nil
}

type activityRepo Store

func (r *activityRepo) CreateBatch(_ context.Context, activities []*models.ClosureActivity) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, a := range activities {
		s.activities[a.ID] = clone(a)
	}
	return nil
}

func (r *activityRepo) List(_ context.Context, userID uuid.UUID) ([]*models.ClosureActivity, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.ClosureActivity{}
	for _, a := range s.activities {
		if a.UserID == userID {
			out = append(out, clone(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *activityRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.ClosureActivity, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return clone(a), nil
}

func (r *activityRepo) Update(_ context.Context, activity *models.ClosureActivity) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.activities[activity.ID]
	if !ok || a.UserID != activity.UserID {
		return repository.ErrNotFound
	}
	s.activities[activity.ID] = clone(activity)
	return nil
}

func (r *activityRepo) CountCompleted(_ context.Context, userID uuid.UUID) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.activities {
		if a.UserID == userID && a.Completed {
			n++
		}
	}
	return n, nil
}

func (r *activityRepo) RecentCompleted(_ context.Context, userID uuid.UUID, limit int) ([]*models.ClosureActivity, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.ClosureActivity{}
	for _, a := range s.activities {
		if a.UserID == userID && a.Completed && a.CompletedDate != nil {
			out = append(out, clone(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedDate.After(*out[j].CompletedDate) })
	return page(out, limit, 0), nil
}

type personalityRepo Store

func (r *personalityRepo) GetByUser(_ context.Context, userID uuid.UUID) (*models.AIPersonality, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.personalities[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *personalityRepo) Upsert(_ context.Context, p *models.AIPersonality) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.personalities[p.UserID]; ok {
		p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.personalities[p.UserID] = clone(p)
	return nil
}

type journalRepo Store

func (r *journalRepo) Create(_ context.Context, entry *models.JournalEntry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt, entry.UpdatedAt = now, now
	s.journal[entry.ID] = clone(entry)
	return nil
}

func (r *journalRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.JournalEntry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.journal[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return clone(e), nil
}

func (r *journalRepo) List(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.JournalEntry{}
	for _, e := range s.journal {
		if e.UserID == userID {
			out = append(out, clone(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, limit, offset), nil
}

func (r *journalRepo) Update(_ context.Context, entry *models.JournalEntry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.journal[entry.ID]
	if !ok || e.UserID != entry.UserID {
		return repository.ErrNotFound
	}
	entry.UpdatedAt = time.Now()
	s.journal[entry.ID] = clone(entry)
	return nil
}

func (r *journalRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.journal[id]
	if !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.journal, id)
	return nil
}
