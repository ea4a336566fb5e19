package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRESTInsertSendsRowWithToken(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewREST(srv.URL, "tok-123", time.Second, zap.NewNop())
	err := store.Insert(context.Background(), "items", map[string]any{"id": "item-1", "name": "Rice"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/items" {
		t.Errorf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotBody["name"] != "Rice" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestRESTUpdateAndDeletePaths(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
	}))
	defer srv.Close()

	store := NewREST(srv.URL, "", time.Second, zap.NewNop())
	ctx := context.Background()

	if err := store.Update(ctx, "items", "item-1", map[string]any{"name": "x"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.Delete(ctx, "items", "item-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	want := []string{"PATCH /items/item-1", "DELETE /items/item-1"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("request %d: expected %q, got %q", i, p, paths[i])
		}
	}
}

func TestRESTSelectAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "item-1", "name": "Rice"},
			{"id": "item-2", "name": "Beans"},
		})
	}))
	defer srv.Close()

	store := NewREST(srv.URL, "", time.Second, zap.NewNop())
	rows, err := store.SelectAll(context.Background(), "items")
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 2 || rows[0]["id"] != "item-1" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestRESTSurfacesStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusConflict)
	}))
	defer srv.Close()

	store := NewREST(srv.URL, "", time.Second, zap.NewNop())
	if err := store.Insert(context.Background(), "items", map[string]any{"id": "x"}); err == nil {
		t.Fatal("expected error on 409")
	}
	if _, err := store.SelectAll(context.Background(), "items"); err == nil {
		t.Fatal("expected error on 409")
	}
}
