package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmylchreest/resumeai/internal/auth"
	"github.com/jmylchreest/resumeai/internal/models"
)

func newTestSessionService(env *testEnv) *SessionService {
	return NewSessionService(env.repos, env.storage, env.tokens, testLogger())
}

// ========================================
// SessionService Tests
// ========================================

func TestSessionService_CreateAndAuthenticate(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestSessionService(env)
	ctx := context.Background()

	tok, err := svc.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tok.SessionID == "" || tok.Token == "" || !tok.ExpiresAt.After(time.Now()) {
		t.Errorf("Create() = %+v", tok)
	}

	sessionID, err := svc.Authenticate(ctx, tok.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if sessionID != tok.SessionID {
		t.Errorf("Authenticate() = %q, want %q", sessionID, tok.SessionID)
	}
}

func TestSessionService_AuthenticateRecordsActivity(t *testing.T) {
	tests := []struct {
		name      string
		idle      time.Duration
		wantTouch bool
	}{
		{"recently seen", time.Minute, false},
		{"idle past interval", 2 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			svc := newTestSessionService(env)
			ctx := context.Background()

			tok, _ := svc.Create(ctx)
			before := time.Now().Add(-tt.idle)
			env.sessions.setLastSeen(tok.SessionID, before)

			if _, err := svc.Authenticate(ctx, tok.Token); err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}

			session, _ := env.sessions.GetByID(ctx, tok.SessionID)
			touched := session.LastSeenAt.After(before)
			if touched != tt.wantTouch {
				t.Errorf("last_seen_at advanced = %v, want %v", touched, tt.wantTouch)
			}
		})
	}
}

func TestSessionService_AuthenticateRejects(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestSessionService(env)
	ctx := context.Background()

	if _, err := svc.Authenticate(ctx, "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("garbage err = %v, want ErrInvalidToken", err)
	}

	tok, _ := svc.Create(ctx)
	if err := svc.Delete(ctx, tok.SessionID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, tok.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("deleted session err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionService_Refresh(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestSessionService(env)
	ctx := context.Background()

	tok, _ := svc.Create(ctx)
	env.sessions.setLastSeen(tok.SessionID, time.Now().Add(-48*time.Hour))

	refreshed, err := svc.Refresh(ctx, tok.SessionID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.SessionID != tok.SessionID || refreshed.Token == "" {
		t.Errorf("Refresh() = %+v", refreshed)
	}

	session, _ := env.sessions.GetByID(ctx, tok.SessionID)
	if time.Since(session.LastSeenAt) > time.Minute {
		t.Errorf("LastSeenAt = %v, want refreshed", session.LastSeenAt)
	}
}

func TestSessionService_DeleteRemovesEverything(t *testing.T) {
	env := newTestEnv(t, true)
	svc := newTestSessionService(env)
	snaps := newTestSnapshotService(env)
	ctx := context.Background()

	tok, _ := svc.Create(ctx)
	other, _ := svc.Create(ctx)
	_ = env.kv.Put(ctx, tok.SessionID, models.KeyResumeData, `{"personalInfo":{"fullName":"x"}}`)
	_, _ = snaps.Create(ctx, tok.SessionID, "a")
	_, _ = snaps.Create(ctx, tok.SessionID, "b")
	_, _ = snaps.Create(ctx, other.SessionID, "keep")

	if err := svc.Delete(ctx, tok.SessionID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if env.objects.count() != 1 {
		t.Errorf("objects left = %d, want only the other session's", env.objects.count())
	}
	if keys, _ := env.kv.Keys(ctx, tok.SessionID); len(keys) != 0 {
		t.Errorf("kv keys left = %v", keys)
	}
	if s, _ := env.sessions.GetByID(ctx, tok.SessionID); s != nil {
		t.Error("session row still present")
	}
	if list, _ := snaps.List(ctx, other.SessionID, 10); len(list) != 1 {
		t.Errorf("other session snapshots = %d, want 1", len(list))
	}
}

func TestSessionService_DeleteKeepsIndexWhenStorageFails(t *testing.T) {
	env := newTestEnv(t, true)
	svc := newTestSessionService(env)
	snaps := newTestSnapshotService(env)
	ctx := context.Background()

	tok, _ := svc.Create(ctx)
	_, _ = snaps.Create(ctx, tok.SessionID, "a")
	env.objects.deleteErr = errors.New("bucket unavailable")

	if err := svc.Delete(ctx, tok.SessionID); err == nil {
		t.Fatal("expected error")
	}
	if s, _ := env.sessions.GetByID(ctx, tok.SessionID); s == nil {
		t.Error("session should survive a storage failure")
	}
	if keys, _ := env.snapshots.ListObjectKeysBySessionID(ctx, tok.SessionID); len(keys) != 1 {
		t.Errorf("snapshot index = %v, want intact", keys)
	}
}

// ========================================
// CleanupService Tests
// ========================================

func TestCleanupService_CleanupIdleSessions(t *testing.T) {
	env := newTestEnv(t, true)
	sessSvc := newTestSessionService(env)
	snaps := newTestSnapshotService(env)
	cleanup := NewCleanupService(env.repos.Session, sessSvc, testLogger())
	ctx := context.Background()

	fresh, _ := sessSvc.Create(ctx)
	idle, _ := sessSvc.Create(ctx)
	_, _ = snaps.Create(ctx, idle.SessionID, "old")
	env.sessions.setLastSeen(idle.SessionID, time.Now().Add(-100*24*time.Hour))

	result, err := cleanup.CleanupIdleSessions(ctx, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupIdleSessions() error = %v", err)
	}
	if result.SessionsDeleted != 1 || result.ObjectsDeleted != 1 || len(result.Errors) != 0 {
		t.Errorf("result = %+v", result)
	}
	if cleanup.Running() {
		t.Error("Running() = true after the pass finished")
	}

	if _, err := sessSvc.Authenticate(ctx, fresh.Token); err != nil {
		t.Errorf("fresh session was removed: %v", err)
	}
	if _, err := sessSvc.Authenticate(ctx, idle.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("idle session err = %v, want ErrSessionNotFound", err)
	}
	if env.objects.count() != 0 {
		t.Errorf("objects left = %d", env.objects.count())
	}
}

func TestCleanupService_ReportsFailuresAndTerminates(t *testing.T) {
	env := newTestEnv(t, true)
	sessSvc := newTestSessionService(env)
	snaps := newTestSnapshotService(env)
	cleanup := NewCleanupService(env.repos.Session, sessSvc, testLogger())
	ctx := context.Background()

	tok, _ := sessSvc.Create(ctx)
	_, _ = snaps.Create(ctx, tok.SessionID, "x")
	env.sessions.setLastSeen(tok.SessionID, time.Now().Add(-time.Hour*24*365))
	env.objects.deleteErr = errors.New("bucket unavailable")

	result, err := cleanup.CleanupIdleSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CleanupIdleSessions() error = %v", err)
	}
	if result.SessionsDeleted != 0 || len(result.Errors) != 1 {
		t.Errorf("result = %+v, want one reported failure", result)
	}
}

func TestCleanupService_RunScheduledCleanupStops(t *testing.T) {
	env := newTestEnv(t, false)
	cleanup := NewCleanupService(env.repos.Session, newTestSessionService(env), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanup.RunScheduledCleanup(ctx, time.Hour, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunScheduledCleanup did not stop after cancel")
	}
}
