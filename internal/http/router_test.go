package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"klyra-ai/internal/indexer"
	"klyra-ai/internal/service"
	"klyra-ai/internal/service/mocks"
	"klyra-ai/internal/storage"
	"klyra-ai/internal/vectorstore"
)

type stubVectorStore struct {
	countErr error
}

func (s *stubVectorStore) Upsert(context.Context, string, []vectorstore.Point) error { return nil }

func (s *stubVectorStore) Query(context.Context, string, []float32, int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (s *stubVectorStore) Delete(context.Context, string, []string) error         { return nil }
func (s *stubVectorStore) DeleteByDocument(context.Context, string, string) error { return nil }

func (s *stubVectorStore) Count(context.Context, string) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return 0, nil
}

type stubDocStore struct{}

func (stubDocStore) Insert(context.Context, *storage.DocumentRecord) error { return nil }

func (stubDocStore) GetByID(context.Context, string) (*storage.DocumentRecord, error) {
	return nil, storage.ErrNotFound
}

func (stubDocStore) Delete(context.Context, string) error { return storage.ErrNotFound }

func (stubDocStore) ListAll(context.Context) ([]storage.DocumentRecord, error) { return nil, nil }

type stubChunkStore struct{}

func (stubChunkStore) InsertBatch(context.Context, []storage.ChunkRecord) error { return nil }
func (stubChunkStore) DeleteByDocument(context.Context, string) error           { return nil }

func (stubChunkStore) ListIDsByDocument(context.Context, string) ([]string, error) {
	return nil, nil
}

func (stubChunkStore) ListAll(context.Context) ([]storage.ChunkRecord, error) { return nil, nil }
func (stubChunkStore) Count(context.Context) (int, error)                     { return 0, nil }

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1}
	}
	return out, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockChatService(ctrl)
	chatService.EXPECT().
		ProcessChat(gomock.Any(), gomock.Any()).
		Return(service.ChatResult{Reply: "ok"}, nil).
		AnyTimes()

	pipeline := indexer.NewPipeline(stubDocStore{}, stubChunkStore{}, stubEmbedder{}, &stubVectorStore{}, "documents", 1000, 100)

	return NewRouter(&Deps{
		ChatService: chatService,
		Pipeline:    pipeline,
		DocRepo:     stubDocStore{},
		ChunkRepo:   stubChunkStore{},
		VectorStore: &stubVectorStore{},
		Collection:  "documents",
	})
}

func TestRouter_ChatRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_HealthRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid health body: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", resp["status"])
	}
}

func TestRouter_StatsRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_DocumentsDeleteUnknown(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
