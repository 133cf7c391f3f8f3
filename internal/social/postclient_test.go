package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetOwnerReturnsDescriptor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/posts/7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"ownerId":"u1","username":"olivia","caption":"sunset"}`))
	}))
	defer srv.Close()

	client := NewPostClient(srv.URL)
	owner, err := client.GetOwner(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner == nil || owner.OwnerID != "u1" || owner.Username != "olivia" || owner.Caption != "sunset" {
		t.Fatalf("unexpected owner: %+v", owner)
	}
}

func TestGetOwnerNotFoundIsNilNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewPostClient(srv.URL)
	owner, err := client.GetOwner(context.Background(), 999)
	if err != nil {
		t.Fatalf("not found must not be an error, got %v", err)
	}
	if owner != nil {
		t.Fatalf("expected nil owner, got %+v", owner)
	}
}

func TestGetOwnerServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewPostClient(srv.URL)
	if _, err := client.GetOwner(context.Background(), 7); err == nil {
		t.Fatal("expected error on 5xx")
	}
}
