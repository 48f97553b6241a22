package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vidya-vichar/backend/internal/courses"
	"github.com/vidya-vichar/backend/internal/middleware"
)

func newTestRouter(t *testing.T, email string) (*gin.Engine, *courses.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rosterStore := courses.NewMemoryStore()
	roster := courses.NewService(rosterStore, fakeDirectory{"anshul@student.com": "Anshul"}, nil)
	svc := NewService(NewMemoryStore(), roster, fakeDirectory{"anshul@student.com": "Anshul"}, nil)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserEmail, email)
	})
	r.POST("/questions", h.Submit)
	r.GET("/questions/instructor", h.InstructorBoard)
	r.GET("/questions/ta", h.TABoard)
	r.GET("/questions/student", h.StudentBoard)
	r.PATCH("/questions/:id/answer", h.Answer)
	r.POST("/sessions/end", h.EndSession)
	return r, rosterStore
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitEndpoint(t *testing.T) {
	r, rosterStore := newTestRouter(t, "anshul@student.com")
	if err := rosterStore.AddInstructor(context.Background(), "SSD", "", "sai@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/questions", gin.H{
		"text":             "What is CAP theorem?",
		"course_name":      "SSD",
		"instructor_email": "sai@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			QuestionID int64 `json:"question_id"`
			Live       bool  `json:"live"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.QuestionID != 1 || !resp.Data.Live {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}
}

func TestSubmitEndpointRejections(t *testing.T) {
	r, rosterStore := newTestRouter(t, "anshul@student.com")
	if err := rosterStore.AddInstructor(context.Background(), "SSD", "", "sai@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing text", gin.H{"course_name": "SSD", "instructor_email": "sai@example.com"}},
		{"bad email", gin.H{"text": "q", "course_name": "SSD", "instructor_email": "not-an-email"}},
		{"instructor not on course", gin.H{"text": "q", "course_name": "SSD", "instructor_email": "other@example.com"}},
		{"unknown course", gin.H{"text": "q", "course_name": "nope", "instructor_email": "sai@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/questions", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAnswerEndpoint(t *testing.T) {
	r, rosterStore := newTestRouter(t, "sai@example.com")
	if err := rosterStore.AddInstructor(context.Background(), "SSD", "", "sai@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/questions", gin.H{
		"text":             "q",
		"course_name":      "SSD",
		"instructor_email": "sai@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPatch, "/questions/1/answer", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Answered   bool    `json:"answered"`
			AnsweredAt *string `json:"answered_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Data.Answered || resp.Data.AnsweredAt == nil {
		t.Fatalf("answer response missing fields: %s", w.Body.String())
	}

	if w := doJSON(t, r, http.MethodPatch, "/questions/999/answer", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPatch, "/questions/abc/answer", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestEndSessionEndpoint(t *testing.T) {
	r, rosterStore := newTestRouter(t, "sai@example.com")
	if err := rosterStore.AddInstructor(context.Background(), "SSD", "", "sai@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/questions", gin.H{
			"text":             "q",
			"course_name":      "SSD",
			"instructor_email": "sai@example.com",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("submit: %d", w.Code)
		}
	}

	w := doJSON(t, r, http.MethodPost, "/sessions/end", gin.H{"course_name": "SSD"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Closed int64 `json:"closed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Closed != 2 {
		t.Fatalf("expected closed=2, got %d", resp.Data.Closed)
	}
}

func TestBoardEndpointsRequireQueryParams(t *testing.T) {
	r, _ := newTestRouter(t, "sai@example.com")

	if w := doJSON(t, r, http.MethodGet, "/questions/instructor", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("instructor board without course: expected 400, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/questions/student?course=SSD", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("student board without instructor: expected 400, got %d", w.Code)
	}
}

func TestStudentBoardEndpointUnknownCourseIsEmpty(t *testing.T) {
	r, _ := newTestRouter(t, "anshul@student.com")

	w := doJSON(t, r, http.MethodGet, "/questions/student?course=nope&instructor=sai@example.com", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Questions []json.RawMessage `json:"questions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Questions) != 0 {
		t.Fatalf("unknown course must yield an empty board, got %s", w.Body.String())
	}
}
