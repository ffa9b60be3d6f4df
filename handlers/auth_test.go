package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	admin, _ := seedTestUser(db, "login@test.com", "admin")

	w := httptest.NewRecorder()
	req := jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "login@test.com",
		"password": "password123",
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["token"] == nil || data["token"] == "" {
		t.Error("expected a token in the response")
	}
	user := data["user"].(map[string]interface{})
	if user["email"] != admin.Email {
		t.Errorf("expected email %s, got %v", admin.Email, user["email"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("password must not appear in the response")
	}

	// Login stamps lastLogin.
	var stored struct{ LastLogin *string }
	db.Table("users").Select("last_login").Where("id = ?", admin.ID).Scan(&stored)
	if stored.LastLogin == nil {
		t.Error("expected last_login to be set after login")
	}
}

func TestLoginWrongThenRightPassword(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	seedTestUser(db, "retry@test.com", "admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "retry@test.com",
		"password": "wrong-password",
	}))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong password, got %d", w.Code)
	}
	if parseResponse(w)["message"] != "ایمیل یا رمز عبور اشتباه است" {
		t.Errorf("unexpected message: %v", parseResponse(w)["message"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "retry@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for correct password, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "nobody@test.com",
		"password": "password123",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	// Same message as a wrong password, so accounts cannot be enumerated.
	if parseResponse(w)["message"] != "ایمیل یا رمز عبور اشتباه است" {
		t.Errorf("unexpected message: %v", parseResponse(w)["message"])
	}
}

func TestLoginInactiveUser(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	user, _ := seedTestUser(db, "disabled@test.com", "admin")
	db.Model(&user).Update("is_active", false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "disabled@test.com",
		"password": "password123",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for inactive user, got %d", w.Code)
	}
}

func TestLoginValidationError(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email": "no-password@test.com",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp["success"] != false {
		t.Error("expected success=false")
	}
	if resp["errors"] == nil {
		t.Error("expected an errors array")
	}
}

func TestMe(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	admin, token := seedTestUser(db, "me@test.com", "admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("GET", "/api/auth/me", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	user := parseResponse(w)["data"].(map[string]interface{})["user"].(map[string]interface{})
	if user["email"] != admin.Email {
		t.Errorf("expected email %s, got %v", admin.Email, user["email"])
	}
	if user["role"] != "admin" {
		t.Errorf("expected role admin, got %v", user["role"])
	}
}

func TestMeWithoutToken(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("GET", "/api/auth/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestChangePassword(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	_, token := seedTestUser(db, "changepw@test.com", "admin")

	// Wrong current password is rejected.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"currentPassword": "not-the-password",
		"newPassword":     "newpassword456",
	}, token))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for wrong current password, got %d", w.Code)
	}
	if parseResponse(w)["message"] != "رمز عبور فعلی اشتباه است" {
		t.Errorf("unexpected message: %v", parseResponse(w)["message"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"currentPassword": "password123",
		"newPassword":     "newpassword456",
	}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	// Old password stops working, the new one logs in.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "changepw@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected old password to be rejected, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]string{
		"email":    "changepw@test.com",
		"password": "newpassword456",
	}))
	if w.Code != http.StatusOK {
		t.Errorf("expected new password to log in, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChangePasswordTooShort(t *testing.T) {
	db := freshDB()
	r := setupAuthRouter(db)
	_, token := seedTestUser(db, "shortpw@test.com", "admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/auth/change-password", map[string]string{
		"currentPassword": "password123",
		"newPassword":     "short",
	}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for short new password, got %d", w.Code)
	}
}
