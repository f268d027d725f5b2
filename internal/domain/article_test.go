package domain

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to Status }{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusFailed},
		{StatusFailed, StatusPending},
	}
	for _, edge := range allowed {
		if !CanTransition(edge.from, edge.to) {
			t.Errorf("expected %s -> %s to be allowed", edge.from, edge.to)
		}
	}

	rejected := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusProcessing},
		{StatusFailed, StatusProcessing},
		{StatusFailed, StatusCompleted},
		{StatusProcessing, StatusPending},
	}
	for _, edge := range rejected {
		if CanTransition(edge.from, edge.to) {
			t.Errorf("expected %s -> %s to be rejected", edge.from, edge.to)
		}
	}
}

func TestTransitionRejectsUndeclaredEdge(t *testing.T) {
	t.Parallel()

	a := NewArticle("https://example.com/news/story")
	err := a.Transition(StatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("status mutated on rejected transition: %s", a.Status)
	}
}

func TestRetryClearsFailureReason(t *testing.T) {
	t.Parallel()

	a := NewArticle("https://example.com/news/story")
	if err := a.Transition(StatusProcessing); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := a.Fail("fetch error: connection refused"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if a.FailureReason == "" {
		t.Fatal("expected failure reason to be recorded")
	}

	if err := a.Transition(StatusPending); err != nil {
		t.Fatalf("retry edge: %v", err)
	}
	if a.FailureReason != "" {
		t.Fatalf("failure reason not cleared on retry: %q", a.FailureReason)
	}
}

func TestNewArticleDerivesDomain(t *testing.T) {
	t.Parallel()

	a := NewArticle("https://www.example.com/news/story?x=1")
	if a.SourceDomain != "www.example.com" {
		t.Fatalf("unexpected source domain: %s", a.SourceDomain)
	}
	if a.Status != StatusPending {
		t.Fatalf("new record must be pending, got %s", a.Status)
	}
	if a.Language != LangUnknown {
		t.Fatalf("new record language must be unknown, got %s", a.Language)
	}
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	cases := map[string]Language{
		"en":      LangEnglish,
		"UK":      LangUkrainian,
		" de ":    LangGerman,
		"pt":      LangUnknown,
		"":        LangUnknown,
		"unknown": LangUnknown,
	}
	for input, want := range cases {
		if got := ParseLanguage(input); got != want {
			t.Errorf("ParseLanguage(%q) = %s, want %s", input, got, want)
		}
	}
}
