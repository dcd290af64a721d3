package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/logging"
	"github.com/dmitrijs2005/geophoto/internal/server/auth"
	"github.com/dmitrijs2005/geophoto/internal/server/models"
	"github.com/dmitrijs2005/geophoto/internal/server/services"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeUserSvc struct {
	loginUser  *models.User
	loginToken string
	loginErr   error

	getUser *models.User
	getErr  error
	gotID   string
}

func (f *fakeUserSvc) Login(ctx context.Context, googleID, email, name, profilePicture string) (*models.User, string, error) {
	return f.loginUser, f.loginToken, f.loginErr
}

func (f *fakeUserSvc) Get(ctx context.Context, id string) (*models.User, error) {
	f.gotID = id
	return f.getUser, f.getErr
}

type fakePhotoSvc struct {
	uploadReq   *services.UploadRequest
	uploadPhoto *models.Photo
	uploadErr   error

	deleteID        string
	deleteRequester string
	deleteErr       error

	listOwner string
	listOut   []*models.Photo
	listErr   error
}

func (f *fakePhotoSvc) Upload(ctx context.Context, req *services.UploadRequest) (*models.Photo, error) {
	f.uploadReq = req
	return f.uploadPhoto, f.uploadErr
}

func (f *fakePhotoSvc) Delete(ctx context.Context, photoID, requesterID string) error {
	f.deleteID = photoID
	f.deleteRequester = requesterID
	return f.deleteErr
}

func (f *fakePhotoSvc) List(ctx context.Context, ownerID string) ([]*models.Photo, error) {
	f.listOwner = ownerID
	return f.listOut, f.listErr
}

// ---- helpers ----

const testSecret = "test-secret"

func newTestServer(u userSvc, p photoSvc) *Server {
	return &Server{
		address:               "127.0.0.1:0",
		users:                 u,
		photos:                p,
		logger:                nopLogger{},
		jwtSecret:             []byte(testSecret),
		maxUploadRequestBytes: 1 << 20,
	}
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.routes().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}

func multipartUpload(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if file != nil {
		fw, err := mw.CreateFormFile("photo", "photo.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

// ---- health ----

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if body := decodeBody(t, w); body["success"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

// ---- auth middleware ----

func TestAuth_MissingToken(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestAuth_MalformedToken(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := doRequest(s, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})

	token, err := auth.GenerateToken("u-1", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := doRequest(s, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
}

func TestAuth_ValidToken_PassesUserID(t *testing.T) {
	us := &fakeUserSvc{getUser: &models.User{ID: "u-1", Name: "Alice"}}
	s := newTestServer(us, &fakePhotoSvc{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if us.gotID != "u-1" {
		t.Fatalf("service received user id %q", us.gotID)
	}
}

// ---- login ----

func TestLogin(t *testing.T) {
	us := &fakeUserSvc{
		loginUser:  &models.User{ID: "u-1", Name: "Alice"},
		loginToken: "tok-123",
	}
	s := newTestServer(us, &fakePhotoSvc{})

	payload := `{"googleId":"g-1","email":"a@b.c","name":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := doRequest(s, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["token"] != "tok-123" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestLogin_InvalidPayload(t *testing.T) {
	us := &fakeUserSvc{loginErr: fmt.Errorf("%w: googleId, email and name are required", common.ErrInvalidRequest)}
	s := newTestServer(us, &fakePhotoSvc{})

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := doRequest(s, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if body := decodeBody(t, w); body["success"] != false {
		t.Fatalf("unexpected body: %v", body)
	}
}

// ---- upload ----

func TestUploadPhoto(t *testing.T) {
	ps := &fakePhotoSvc{uploadPhoto: &models.Photo{ID: "p-1", Title: "sunset"}}
	s := newTestServer(&fakeUserSvc{}, ps)

	buf, contentType := multipartUpload(t, map[string]string{
		"title":     "sunset",
		"latitude":  "52.1",
		"longitude": "4.3",
	}, []byte("fake-image-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/photos", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ps.uploadReq.OwnerID != "u-1" || ps.uploadReq.Title != "sunset" {
		t.Fatalf("service received %+v", ps.uploadReq)
	}
	if ps.uploadReq.Latitude != 52.1 || ps.uploadReq.Longitude != 4.3 {
		t.Fatalf("coordinates not parsed: %+v", ps.uploadReq)
	}
	if string(ps.uploadReq.Data) != "fake-image-bytes" {
		t.Fatalf("file bytes not passed through")
	}
}

func TestUploadPhoto_MissingFile(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})

	buf, contentType := multipartUpload(t, map[string]string{
		"title": "sunset", "latitude": "1", "longitude": "2",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/photos", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestUploadPhoto_BadCoordinates(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})

	buf, contentType := multipartUpload(t, map[string]string{
		"title": "sunset", "latitude": "north", "longitude": "4.3",
	}, []byte("img"))

	req := httptest.NewRequest(http.MethodPost, "/api/photos", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestUploadPhoto_RequestTooLarge(t *testing.T) {
	s := newTestServer(&fakeUserSvc{}, &fakePhotoSvc{})
	s.maxUploadRequestBytes = 64

	buf, contentType := multipartUpload(t, map[string]string{
		"title": "sunset", "latitude": "1", "longitude": "2",
	}, bytes.Repeat([]byte("x"), 1024))

	req := httptest.NewRequest(http.MethodPost, "/api/photos", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d, want 413", w.Code)
	}
}

// ---- error mapping ----

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrInvalidRequest, http.StatusBadRequest},
		{common.ErrUnauthenticated, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrNotFound, http.StatusNotFound},
		{common.ErrUploadLimitReached, http.StatusRequestEntityTooLarge},
		{common.ErrStorageLimitReached, http.StatusRequestEntityTooLarge},
		{common.ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{common.ErrStoreUnavailable, http.StatusInternalServerError},
		{common.ErrPersistenceFailed, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		if got := statusFromError(fmt.Errorf("wrapped: %w", tc.err)); got != tc.want {
			t.Errorf("statusFromError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestUploadPhoto_QuotaExceededStatus(t *testing.T) {
	ps := &fakePhotoSvc{uploadErr: common.ErrUploadLimitReached}
	s := newTestServer(&fakeUserSvc{}, ps)

	buf, contentType := multipartUpload(t, map[string]string{
		"title": "sunset", "latitude": "1", "longitude": "2",
	}, []byte("img"))

	req := httptest.NewRequest(http.MethodPost, "/api/photos", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d, want 413", w.Code)
	}
}

// ---- delete ----

func TestDeletePhoto(t *testing.T) {
	ps := &fakePhotoSvc{}
	s := newTestServer(&fakeUserSvc{}, ps)

	req := httptest.NewRequest(http.MethodDelete, "/api/photos/p-9", nil)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ps.deleteID != "p-9" || ps.deleteRequester != "u-1" {
		t.Fatalf("service received id=%q requester=%q", ps.deleteID, ps.deleteRequester)
	}
}

func TestDeletePhoto_Forbidden(t *testing.T) {
	ps := &fakePhotoSvc{deleteErr: common.ErrForbidden}
	s := newTestServer(&fakeUserSvc{}, ps)

	req := httptest.NewRequest(http.MethodDelete, "/api/photos/p-9", nil)
	req.Header.Set("Authorization", bearerFor(t, "u-1"))
	w := doRequest(s, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", w.Code)
	}
}

// ---- listing ----

func TestListPhotos(t *testing.T) {
	ps := &fakePhotoSvc{listOut: []*models.Photo{
		{ID: "p-2", Title: "newer"},
		{ID: "p-1", Title: "older"},
	}}
	s := newTestServer(&fakeUserSvc{}, ps)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/photos?userId=u-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ps.listOwner != "u-1" {
		t.Fatalf("owner filter not passed: %q", ps.listOwner)
	}
	body := decodeBody(t, w)
	if body["count"] != float64(2) {
		t.Fatalf("unexpected count: %v", body["count"])
	}
}

func TestListPhotos_Unfiltered(t *testing.T) {
	ps := &fakePhotoSvc{}
	s := newTestServer(&fakeUserSvc{}, ps)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/photos", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ps.listOwner != "" {
		t.Fatalf("expected empty owner filter, got %q", ps.listOwner)
	}
}
