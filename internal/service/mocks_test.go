package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/resumeai/internal/auth"
	"github.com/jmylchreest/resumeai/internal/crypto"
	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/repository"
)

// ========================================
// Mock Repositories
// ========================================

// mockKVRepository implements repository.KVRepository in memory.
type mockKVRepository struct {
	mu     sync.RWMutex
	values map[string]map[string]string
	putErr error
}

func newMockKVRepository() *mockKVRepository {
	return &mockKVRepository{values: make(map[string]map[string]string)}
}

func (m *mockKVRepository) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[sessionID][key]
	return v, ok, nil
}

func (m *mockKVRepository) Put(ctx context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.values[sessionID] == nil {
		m.values[sessionID] = make(map[string]string)
	}
	m.values[sessionID][key] = value
	return nil
}

func (m *mockKVRepository) Delete(ctx context.Context, sessionID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values[sessionID], k)
	}
	return nil
}

func (m *mockKVRepository) Keys(ctx context.Context, sessionID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values[sessionID]))
	for k := range m.values[sessionID] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// raw returns the stored value without decoding.
func (m *mockKVRepository) raw(sessionID, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[sessionID][key]
}

// mockSessionRepository implements repository.SessionRepository in memory.
type mockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	kv       *mockKVRepository
}

func newMockSessionRepository(kv *mockKVRepository) *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*models.Session), kv: kv}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == "" {
		session.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.LastSeenAt = now
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *mockSessionRepository) Touch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = time.Now().UTC()
		return nil
	}
	now := time.Now().UTC()
	m.sessions[id] = &models.Session{ID: id, CreatedAt: now, LastSeenAt: now}
	return nil
}

func (m *mockSessionRepository) ListIdleBefore(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, s := range m.sessions {
		if s.LastSeenAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	if m.kv != nil {
		m.kv.mu.Lock()
		delete(m.kv.values, id)
		m.kv.mu.Unlock()
	}
	return nil
}

func (m *mockSessionRepository) setLastSeen(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id].LastSeenAt = at
}

// mockSnapshotRepository implements repository.SnapshotRepository in memory.
type mockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []*models.Snapshot
	createErr error
}

func (m *mockSnapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if snapshot.ID == "" {
		snapshot.ID = ulid.Make().String()
	}
	snapshot.CreatedAt = time.Now().UTC()
	copied := *snapshot
	m.snapshots = append(m.snapshots, &copied)
	return nil
}

func (m *mockSnapshotRepository) GetByID(ctx context.Context, sessionID, id string) (*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.snapshots {
		if s.SessionID == sessionID && s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockSnapshotRepository) ListBySessionID(ctx context.Context, sessionID string, limit int) ([]*models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Snapshot
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].SessionID == sessionID {
			copied := *m.snapshots[i]
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockSnapshotRepository) ListObjectKeysBySessionID(ctx context.Context, sessionID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for _, s := range m.snapshots {
		if s.SessionID == sessionID {
			keys = append(keys, s.ObjectKey)
		}
	}
	return keys, nil
}

// deleteSession mirrors the cascade of the SQL repository.
func (m *mockSnapshotRepository) deleteSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.snapshots[:0]
	for _, s := range m.snapshots {
		if s.SessionID != id {
			kept = append(kept, s)
		}
	}
	m.snapshots = kept
}

// cascadingSessionRepository deletes snapshot rows together with the session.
type cascadingSessionRepository struct {
	*mockSessionRepository
	snapshots *mockSnapshotRepository
}

func (c cascadingSessionRepository) Delete(ctx context.Context, id string) error {
	c.snapshots.deleteSession(id)
	return c.mockSessionRepository.Delete(ctx, id)
}

// ========================================
// Mock Object Store
// ========================================

// mockObjectStore implements ObjectStore in memory.
type mockObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte)}
}

func (m *mockObjectStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockObjectStore) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockObjectStore) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	for _, obj := range params.Delete.Objects {
		delete(m.objects, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (m *mockObjectStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// ========================================
// Mock Completer
// ========================================

// scriptedCompleter answers per model. A model without a script fails with 503.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies map[string]scriptedReply
	calls   []string
	lastReq llm.Request
}

type scriptedReply struct {
	text   string
	status int // non-zero fails with a provider error of this status
}

func newScriptedCompleter(replies map[string]scriptedReply) *scriptedCompleter {
	return &scriptedCompleter{replies: replies}
}

func (c *scriptedCompleter) Call(ctx context.Context, provider, apiKey string, req llm.Request) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req.Model)
	c.lastReq = req
	reply, ok := c.replies[req.Model]
	c.mu.Unlock()

	if !ok {
		return "", llm.NewProviderError(provider, req.Model, 503, "unavailable")
	}
	if reply.status != 0 {
		return "", llm.NewProviderError(provider, req.Model, reply.status, fmt.Sprintf("status %d", reply.status))
	}
	return reply.text, nil
}

func (c *scriptedCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// ========================================
// Helpers
// ========================================

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testRegistry() *llm.Registry {
	return llm.InitRegistry(llm.DefaultEndpoints(), nil)
}

func testEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	enc, err := crypto.NewEncryptor(key)
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}
	return enc
}

// testEnv wires services over in-memory fakes.
type testEnv struct {
	kv        *mockKVRepository
	sessions  *mockSessionRepository
	snapshots *mockSnapshotRepository
	objects   *mockObjectStore
	repos     *repository.Repositories
	storage   *StorageService
	tokens    *auth.TokenManager
}

func newTestEnv(t *testing.T, withStorage bool) *testEnv {
	t.Helper()
	kv := newMockKVRepository()
	sessions := newMockSessionRepository(kv)
	snapshots := &mockSnapshotRepository{}
	env := &testEnv{
		kv:        kv,
		sessions:  sessions,
		snapshots: snapshots,
		tokens:    auth.NewTokenManager("test-secret", time.Hour),
	}
	env.repos = &repository.Repositories{
		Session:  cascadingSessionRepository{mockSessionRepository: sessions, snapshots: snapshots},
		KV:       kv,
		Snapshot: snapshots,
	}
	if withStorage {
		env.objects = newMockObjectStore()
		env.storage = NewStorageServiceWithClient(env.objects, "test-bucket", testLogger())
	} else {
		env.storage = &StorageService{logger: testLogger()}
	}
	return env
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	s := &models.Session{}
	if err := e.sessions.Create(context.Background(), s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return s.ID
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
