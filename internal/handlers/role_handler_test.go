package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"resume-screener/internal/models"
	"resume-screener/internal/repositories"
)

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestCreateRole_WithoutOldRubric(t *testing.T) {
	db := newTestDB(t)
	gemini := &fakeGemini{}
	app := newTestApp(db, gemini, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	form := url.Values{}
	form.Set("title", "Backend Engineer")
	form.Set("description", "Build and run Go services.")

	resp := postForm(t, app, "/api/roles", form)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var rows []models.Role
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 inserted row, got %d", len(rows))
	}
	if rows[0].RubricText != nil {
		t.Errorf("expected nil rubric_text, got %q", *rows[0].RubricText)
	}
	if gemini.rubricCalls != 0 {
		t.Errorf("expected no AI calls, got %d", gemini.rubricCalls)
	}
}

func TestCreateRole_WithOldRubric(t *testing.T) {
	db := newTestDB(t)
	gemini := &fakeGemini{rubric: "generated rubric"}
	app := newTestApp(db, gemini, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	form := url.Values{}
	form.Set("title", "Backend Engineer")
	form.Set("description", "Build and run Go services.")
	form.Set("old_rubric", "previous rubric")

	resp := postForm(t, app, "/api/roles", form)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	if gemini.rubricCalls != 1 {
		t.Fatalf("expected exactly 1 rubric AI call, got %d", gemini.rubricCalls)
	}

	var rows []models.Role
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rows[0].RubricText == nil || *rows[0].RubricText != "generated rubric" {
		t.Errorf("expected generated rubric to be stored, got %v", rows[0].RubricText)
	}
}

func TestCreateRole_AIFailureAborts(t *testing.T) {
	db := newTestDB(t)
	gemini := &fakeGemini{rubricErr: errors.New("model unavailable")}
	app := newTestApp(db, gemini, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	form := url.Values{}
	form.Set("title", "Backend Engineer")
	form.Set("description", "Build and run Go services.")
	form.Set("old_rubric", "previous rubric")

	resp := postForm(t, app, "/api/roles", form)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&models.Role{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no role rows after AI failure, got %d", count)
	}
}

func TestCreateRole_MissingFields(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db, &fakeGemini{}, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	form := url.Values{}
	form.Set("title", "Backend Engineer")

	resp := postForm(t, app, "/api/roles", form)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetRole_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	gemini := &fakeGemini{rubric: "generated rubric"}
	app := newTestApp(db, gemini, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	form := url.Values{}
	form.Set("title", "Backend Engineer")
	form.Set("description", "Build and run Go services.")
	form.Set("old_rubric", "previous rubric")

	resp := postForm(t, app, "/api/roles", form)
	var created []models.Role
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/roles/"+created[0].ID.String(), nil)
	getResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}

	var fetched models.Role
	if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if fetched.Title != created[0].Title ||
		fetched.Description != created[0].Description {
		t.Errorf("fetched role differs from created: %+v vs %+v", fetched, created[0])
	}
	if fetched.RubricText == nil || *fetched.RubricText != *created[0].RubricText {
		t.Errorf("fetched rubric differs from created")
	}
}

func TestGetRole_NotFound(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db, &fakeGemini{}, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/api/roles/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListRoles_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	app := newTestApp(db, &fakeGemini{}, newFakeStorage(), newFakeIndex(), &fakeExtractor{})

	seedRole(t, db, "older", time.Now().Add(-time.Hour))
	seedRole(t, db, "newer", time.Now())

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var roles []models.Role
	if err := json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}
	if roles[0].Title != "newer" || roles[1].Title != "older" {
		t.Errorf("expected newest first, got %q then %q", roles[0].Title, roles[1].Title)
	}
}

func seedRole(t *testing.T, db *gorm.DB, title string, createdAt time.Time) models.Role {
	t.Helper()

	rubric := "seed rubric"
	role := models.Role{
		ID:          uuid.New(),
		Title:       title,
		Description: "seed description",
		RubricText:  &rubric,
		CreatedAt:   createdAt,
	}
	if err := repositories.NewRoleRepository(db).Create(&role); err != nil {
		t.Fatalf("seed role: %v", err)
	}
	return role
}
