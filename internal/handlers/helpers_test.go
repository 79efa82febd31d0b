// internal/handlers/helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"go_malayalam_trainer/internal/catalog"
	"go_malayalam_trainer/internal/config"
	"go_malayalam_trainer/internal/repository"
	"go_malayalam_trainer/internal/service"
	"go_malayalam_trainer/internal/storage"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New()
	require.NoError(t, err)
	return c
}

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{
			QuizQuestionCount:  5,
			QuizAdvanceDelay:   0, // テストでは明示 advance
			SessionLimit:       10,
			ValidateContentIDs: true,
		},
	}
}

// testProgressService は固定クロック・指定 KVStore 上の進捗ファサードを作ります
func testProgressService(t *testing.T, kv storage.KVStore) service.ProgressService {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	store := repository.NewProgressStore(kv, testCatalog(t), testLogger, clock)
	return service.NewProgressService(store, testLogger)
}

// doRequest はルーターに JSON リクエストを投げてレコーダーを返します
func doRequest(router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeBody はレスポンスボディを dst にデコードします
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}
