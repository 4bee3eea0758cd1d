package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ProblemRadar/internal/domain"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("chat_id") != "42" || r.PostForm.Get("text") != "*Trending*" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("TOKEN", "42").WithAPIBase(srv.URL + "/")
	if err := n.PublishDigest(context.Background(), "*Trending*"); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewNotifier("T", "1").WithAPIBase(srv.URL).PublishDigest(context.Background(), "x")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
