package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jmylchreest/resumeai/internal/models"
)

// ========================================
// ResumeService Tests
// ========================================

func TestResumeService_GetEmpty(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewResumeService(env.kv, 0, testLogger())

	resume, err := svc.Get(context.Background(), env.newSession(t))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resume.PersonalInfo.FullName != "" || len(resume.Experience) != 0 {
		t.Errorf("Get() = %+v, want empty resume", resume)
	}
}

func TestResumeService_SaveLastWriteWins(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewResumeService(env.kv, 0, testLogger())
	ctx := context.Background()
	sessionID := env.newSession(t)

	first := &models.Resume{PersonalInfo: models.PersonalInfo{FullName: "First"}, Skills: []models.Skill{{Name: "Go"}}}
	second := &models.Resume{PersonalInfo: models.PersonalInfo{FullName: "Second"}}

	if err := svc.Save(ctx, sessionID, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := svc.Save(ctx, sessionID, second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _ := svc.Get(ctx, sessionID)
	if got.PersonalInfo.FullName != "Second" || len(got.Skills) != 0 {
		t.Errorf("Get() = %+v, want the second write only", got)
	}
}

func TestResumeService_SaveValidates(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewResumeService(env.kv, 0, testLogger())
	ctx := context.Background()

	tooMany := &models.Resume{Skills: make([]models.Skill, models.MaxResumeEntries+1)}
	if err := svc.Save(ctx, env.newSession(t), tooMany); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if err := svc.Save(ctx, env.newSession(t), nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil resume err = %v, want ErrInvalidInput", err)
	}
}

func TestResumeService_Export(t *testing.T) {
	env := newTestEnv(t, false)
	svc := NewResumeService(env.kv, 0, testLogger())
	ctx := context.Background()
	sessionID := env.newSession(t)

	_ = svc.Save(ctx, sessionID, &models.Resume{PersonalInfo: models.PersonalInfo{FullName: "Ada Lovelace"}})

	data, filename, err := svc.Export(ctx, sessionID)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filename != "ada-lovelace-resume.json" {
		t.Errorf("filename = %q", filename)
	}
	var decoded models.Resume
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if decoded.PersonalInfo.FullName != "Ada Lovelace" {
		t.Errorf("exported name = %q", decoded.PersonalInfo.FullName)
	}
}

func TestResumeService_Import(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantName string
	}{
		{
			name:     "valid with numeric gpa and unknown fields",
			body:     `{"personalInfo":{"fullName":"Ada"},"education":[{"institution":"Cambridge","gpa":3.9}],"theme":"dark"}`,
			wantName: "Ada",
		},
		{name: "array", body: `[{"personalInfo":{}}]`, wantErr: true},
		{name: "malformed", body: `{"personalInfo":`, wantErr: true},
		{name: "trailing data", body: `{"personalInfo":{}} {}`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
		{name: "oversized", body: `{"personalInfo":{"summary":"` + strings.Repeat("x", 600) + `"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			svc := NewResumeService(env.kv, 512, testLogger())
			ctx := context.Background()
			sessionID := env.newSession(t)

			got, err := svc.Import(ctx, sessionID, strings.NewReader(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Import() err = %v, want ErrInvalidInput", err)
				}
				if env.kv.raw(sessionID, models.KeyResumeData) != "" {
					t.Error("rejected import must not be stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if got.PersonalInfo.FullName != tt.wantName {
				t.Errorf("name = %q", got.PersonalInfo.FullName)
			}
			if got.Education[0].GPA != "3.9" {
				t.Errorf("GPA = %q, want 3.9", got.Education[0].GPA)
			}
			stored, _ := svc.Get(ctx, sessionID)
			if stored.PersonalInfo.FullName != tt.wantName {
				t.Error("import was not stored")
			}
		})
	}
}
