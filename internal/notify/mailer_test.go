package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/khushik17/notesweb/internal/queue"
)

func TestBuildMessage_Headers(t *testing.T) {
	t.Parallel()

	mailer := NewSMTPMailer(Options{
		Host:     "smtp.example.com",
		Port:     587,
		From:     "noreply@example.com",
		FromName: "Notes App",
	})

	msg := mailer.buildMessage("alice@example.com", "Note Created: Groceries", "<html></html>")

	for _, want := range []string{
		"From: Notes App <noreply@example.com>\r\n",
		"To: alice@example.com\r\n",
		"Subject: Note Created: Groceries\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing header %q\nmessage:\n%s", want, msg)
		}
	}

	// Body comes after the blank line separating headers
	if !strings.Contains(msg, "\r\n\r\n<html></html>") {
		t.Error("expected body after header separator")
	}
}

func TestRenderNoteCreated(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, time.March, 14, 15, 4, 0, 0, time.UTC)
	body, err := renderNoteCreated(queue.NoteCreatedPayload{
		Title:         "Trip plan",
		Description:   "Pack by Friday",
		NoteCreatedAt: created,
	}, "https://notes.example.com")
	if err != nil {
		t.Fatalf("renderNoteCreated: %v", err)
	}

	for _, want := range []string{
		"Trip plan",
		"Pack by Friday",
		"March 14, 2026",
		`href="https://notes.example.com"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderNoteCreated_EmptyDescription(t *testing.T) {
	t.Parallel()

	body, err := renderNoteCreated(queue.NoteCreatedPayload{
		Title:         "Reminder",
		NoteCreatedAt: time.Now(),
	}, "")
	if err != nil {
		t.Fatalf("renderNoteCreated: %v", err)
	}

	if !strings.Contains(body, "No description added") {
		t.Error("expected placeholder for empty description")
	}
	if strings.Contains(body, "View All Notes") {
		t.Error("expected no link when app URL is unset")
	}
}

func TestRenderNoteCreated_EscapesHTML(t *testing.T) {
	t.Parallel()

	body, err := renderNoteCreated(queue.NoteCreatedPayload{
		Title:         `<script>alert("x")</script>`,
		Description:   "a < b",
		NoteCreatedAt: time.Now(),
	}, "")
	if err != nil {
		t.Fatalf("renderNoteCreated: %v", err)
	}

	if strings.Contains(body, "<script>") {
		t.Error("note title was not escaped")
	}
	if !strings.Contains(body, "a &lt; b") {
		t.Error("description was not escaped")
	}
}

func TestSendNoteCreated_RequiresRecipient(t *testing.T) {
	t.Parallel()

	mailer := NewSMTPMailer(Options{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"})
	err := mailer.SendNoteCreated(t.Context(), queue.NoteCreatedPayload{Title: "x"})
	if err == nil {
		t.Error("expected error for missing recipient")
	}
}
