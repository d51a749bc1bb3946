package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resume-screener/internal/models"
	"resume-screener/internal/repositories"
	"resume-screener/internal/services"
)

type fakeGemini struct {
	rubric      string
	rubricErr   error
	rubricCalls int

	evalResult *models.EvaluationResult
	evalErr    error
	evalCalls  int

	embedding []float32
	embedErr  error
}

func (f *fakeGemini) GenerateRubric(_ context.Context, _ string) (string, error) {
	f.rubricCalls++
	if f.rubricErr != nil {
		return "", f.rubricErr
	}
	return f.rubric, nil
}

func (f *fakeGemini) EvaluateResume(_ context.Context, _ string) (*models.EvaluationResult, error) {
	f.evalCalls++
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.evalResult, nil
}

func (f *fakeGemini) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedding, nil
}

type fakeStorage struct {
	uploaded  map[string][]byte
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploaded[key] = data
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://store.example/storage/v1/object/public/resumes/" + key
}

type fakeIndex struct {
	indexed map[string]string // resume id -> role id
	similar []models.SimilarResume
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[string]string{}}
}

func (i *fakeIndex) InitCollection() error { return nil }

func (i *fakeIndex) IndexResume(_ context.Context, resumeID, roleID string, _ []float32) error {
	i.indexed[resumeID] = roleID
	return nil
}

func (i *fakeIndex) SearchSimilar(_ context.Context, _, _ string, _ int) ([]models.SimilarResume, error) {
	return i.similar, nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (e *fakeExtractor) ExtractText(_ []byte, _ services.FileKind) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

// newTestDB opens an in-memory sqlite database. The model column defaults
// are postgres functions, so the tables are created by hand.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	stmts := []string{
		`CREATE TABLE roles (
			id text PRIMARY KEY,
			title text NOT NULL,
			description text NOT NULL,
			rubric_text text,
			created_at datetime
		)`,
		`CREATE TABLE resumes (
			id text PRIMARY KEY,
			role_id text NOT NULL,
			file_name text NOT NULL,
			file_url text NOT NULL,
			score integer NOT NULL DEFAULT 0,
			evaluation_details text,
			created_at datetime
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	return db
}

func newTestApp(db *gorm.DB, gemini *fakeGemini, storage *fakeStorage, index *fakeIndex, extractor services.TextExtractor) *fiber.App {
	roleRepo := repositories.NewRoleRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)

	roleHandler := NewRoleHandler(roleRepo, gemini)
	resumeHandler := NewResumeHandler(roleRepo, resumeRepo, storage, gemini, extractor, index)

	app := fiber.New()
	api := app.Group("/api")
	api.Post("/roles", roleHandler.HandleCreateRole)
	api.Get("/roles", roleHandler.HandleListRoles)
	api.Get("/roles/:role_id", roleHandler.HandleGetRole)
	api.Post("/roles/:role_id/upload-resume", resumeHandler.HandleUploadResume)
	api.Get("/roles/:role_id/results", resumeHandler.HandleListResults)
	api.Get("/roles/:role_id/resumes/:resume_id/similar", resumeHandler.HandleListSimilar)

	return app
}

func newMultipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("resume_file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}
