package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

func newTestTemplateService(env *testEnv) *TemplateService {
	return NewTemplateService(env.kv, NewResumeService(env.kv, 0, testLogger()), testLogger())
}

// ========================================
// TemplateService Tests
// ========================================

func TestTemplateService_AddRoundTrip(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	prefs := models.TemplatePreferences{Style: "modern", Sections: []string{"experience"}}
	added, err := svc.Add(ctx, sessionID, AddTemplateInput{Name: "  Mine  ", Code: validTemplate, Preferences: prefs})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.ID == "" || !added.IsCustom || added.Name != "Mine" {
		t.Errorf("Add() = %+v", added)
	}

	got, err := svc.Get(ctx, sessionID, added.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != added.ID || got.Name != added.Name || got.Code != added.Code {
		t.Errorf("round trip mismatch: got %+v want %+v", got, added)
	}
	if got.Code != validTemplate {
		t.Errorf("Code = %q", got.Code)
	}
	if got.Preferences.Style != "modern" || len(got.Preferences.Sections) != 1 {
		t.Errorf("Preferences = %+v", got.Preferences)
	}
}

func TestTemplateService_AddRejectsInvalidCode(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"document entry", "document.createElement('div')", templatecode.ErrInvalidTemplateStructure},
		{"import", "import x from 'y';\n" + validTemplate, templatecode.ErrInvalidTemplateStructure},
		{"event handler", "React.createElement('div', { onClick: 'x' })", templatecode.ErrInvalidTemplateStructure},
		{"unbalanced", "React.createElement('div', null))", templatecode.ErrValidationSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, sessionID, AddTemplateInput{Name: "bad", Code: tt.code})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Add() err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	list, _ := svc.List(ctx, sessionID)
	if len(list) != 0 {
		t.Errorf("invalid templates were stored: %d", len(list))
	}
	if env.kv.raw(sessionID, models.KeyCustomTemplates) != "" {
		t.Error("store should be untouched after rejections")
	}
}

func TestTemplateService_AddValidation(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	if _, err := svc.Add(ctx, sessionID, AddTemplateInput{Name: " ", Code: validTemplate}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty name err = %v", err)
	}
	long := strings.Repeat("n", MaxTemplateNameChars+1)
	if _, err := svc.Add(ctx, sessionID, AddTemplateInput{Name: long, Code: validTemplate}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("long name err = %v", err)
	}
}

func TestTemplateService_Limit(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	for i := 0; i < MaxCustomTemplates; i++ {
		if _, err := svc.Add(ctx, sessionID, AddTemplateInput{Name: fmt.Sprintf("t%d", i), Code: validTemplate}); err != nil {
			t.Fatalf("Add(%d) error = %v", i, err)
		}
	}
	if _, err := svc.Add(ctx, sessionID, AddTemplateInput{Name: "over", Code: validTemplate}); !errors.Is(err, ErrLimitReached) {
		t.Errorf("err = %v, want ErrLimitReached", err)
	}
}

func TestTemplateService_Delete(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	a, _ := svc.Add(ctx, sessionID, AddTemplateInput{Name: "a", Code: validTemplate})
	b, _ := svc.Add(ctx, sessionID, AddTemplateInput{Name: "b", Code: validTemplate})

	if err := svc.Delete(ctx, sessionID, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, sessionID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() err = %v, want ErrNotFound", err)
	}

	list, _ := svc.List(ctx, sessionID)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("List() = %+v, want only b", list)
	}
}

func TestTemplateService_SessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	a, b := env.newSession(t), env.newSession(t)

	tmpl, _ := svc.Add(ctx, a, AddTemplateInput{Name: "a", Code: validTemplate})
	if _, err := svc.Get(ctx, b, tmpl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() from other session err = %v, want ErrNotFound", err)
	}
}

func TestTemplateService_CorruptStoreReadsEmpty(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	_ = env.kv.Put(ctx, sessionID, models.KeyCustomTemplates, "{not json")
	list, err := svc.List(ctx, sessionID)
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; want empty", list, err)
	}
}

// ========================================
// Render Tests
// ========================================

func TestTemplateService_Render(t *testing.T) {
	env := newTestEnv(t, false)
	svc := newTestTemplateService(env)
	ctx := context.Background()
	sessionID := env.newSession(t)

	resume := &models.Resume{PersonalInfo: models.PersonalInfo{FullName: "Grace <Hopper>"}}
	if err := svc.resumes.Save(ctx, sessionID, resume); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	custom, _ := svc.Add(ctx, sessionID, AddTemplateInput{Name: "mine", Code: validTemplate})

	t.Run("custom with stored resume", func(t *testing.T) {
		out, err := svc.Render(ctx, sessionID, custom.ID, nil)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		want := `<div class="resume"><h1>Grace &lt;Hopper&gt;</h1></div>`
		if out != want {
			t.Errorf("Render() = %s, want %s", out, want)
		}
	})

	t.Run("builtin with explicit resume", func(t *testing.T) {
		out, err := svc.Render(ctx, sessionID, "classic", &models.Resume{
			PersonalInfo: models.PersonalInfo{FullName: "Alan Turing"},
			Skills:       []models.Skill{{Name: "Logic"}},
		})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if !containsAll(out, "Alan Turing", "Logic") {
			t.Errorf("Render() = %s", out)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.Render(ctx, sessionID, "missing", nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("tampered store is recompiled", func(t *testing.T) {
		_ = env.kv.Put(ctx, sessionID, models.KeyCustomTemplates,
			`[{"id":"evil","name":"x","code":"React.createElement('script', null, 'alert(1)')","isCustom":true}]`)
		if _, err := svc.Render(ctx, sessionID, "evil", nil); !errors.Is(err, templatecode.ErrInvalidTemplateStructure) {
			t.Errorf("err = %v, want ErrInvalidTemplateStructure", err)
		}
	})
}

func TestTemplateService_Builtins(t *testing.T) {
	svc := newTestTemplateService(newTestEnv(t, false))
	builtins := svc.Builtins()
	if len(builtins) == 0 {
		t.Fatal("expected builtin templates")
	}
	for _, b := range builtins {
		if res := templatecode.Validate(b.Code); !res.Valid {
			t.Errorf("builtin %s invalid: %v", b.ID, res.Err)
		}
	}
}
