package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"listing_bot/internal/model"
)

type sentMessage struct {
	ChatID int64
	Photo  string
	Text   string
}

type mockSender struct {
	mu       sync.Mutex
	messages []sentMessage
	failText string // fail any send whose text contains this substring
}

func (m *mockSender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.record(sentMessage{ChatID: chatID, Text: text})
}

func (m *mockSender) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.record(sentMessage{ChatID: chatID, Photo: photoURL, Text: caption})
}

func (m *mockSender) record(msg sentMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failText != "" && strings.Contains(msg.Text, m.failText) {
		return fmt.Errorf("transport down")
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockSender) getMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]sentMessage, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBatch() []model.Listing {
	return []model.Listing{
		{Title: "Oldest", DetailURL: "https://www.olx.pl/d/1", Source: model.SourceOLX},
		{Title: "Middle", DetailURL: "https://www.olx.pl/d/2", Source: model.SourceOLX, ImageURL: "https://img.example.com/2.jpg"},
		{Title: "Newest", DetailURL: "https://www.olx.pl/d/3", Source: model.SourceOLX},
	}
}

func TestSendBatchOrderAndSummary(t *testing.T) {
	sender := &mockSender{}
	n := New(sender, testLogger(), 0, time.Second)

	if err := n.SendBatch(context.Background(), 100, testBatch()); err != nil {
		t.Fatalf("send batch: %v", err)
	}

	msgs := sender.getMessages()
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4 (summary + 3 listings)", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "found 3 listings") {
		t.Errorf("first message is not the summary: %q", msgs[0].Text)
	}

	// Oldest-first input is presented newest first.
	var order []string
	for _, m := range msgs[1:] {
		title := strings.SplitN(m.Text, "*", 3)[1]
		order = append(order, title)
	}
	want := []string{"Newest", "Middle", "Oldest"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("send order mismatch (-want +got):\n%s", diff)
	}
}

func TestSendBatchPhotoVsText(t *testing.T) {
	sender := &mockSender{}
	n := New(sender, testLogger(), 0, time.Second)

	if err := n.SendBatch(context.Background(), 100, testBatch()); err != nil {
		t.Fatalf("send batch: %v", err)
	}

	msgs := sender.getMessages()
	for _, m := range msgs[1:] {
		hasImage := strings.Contains(m.Text, "Middle")
		if hasImage && m.Photo == "" {
			t.Errorf("listing with image sent as text: %q", m.Text)
		}
		if !hasImage && m.Photo != "" {
			t.Errorf("listing without image sent as photo: %q", m.Text)
		}
	}
}

func TestSendBatchEmptyIsNoop(t *testing.T) {
	sender := &mockSender{}
	n := New(sender, testLogger(), 0, time.Second)

	if err := n.SendBatch(context.Background(), 100, nil); err != nil {
		t.Fatalf("send batch: %v", err)
	}
	if len(sender.getMessages()) != 0 {
		t.Error("empty batch must not send anything")
	}
}

func TestSendBatchPartialFailure(t *testing.T) {
	sender := &mockSender{failText: "Middle"}
	n := New(sender, testLogger(), 0, time.Second)

	err := n.SendBatch(context.Background(), 100, testBatch())
	if err == nil {
		t.Fatal("expected aggregate error for partial failure")
	}

	// The failing send must not stop the rest of the batch.
	msgs := sender.getMessages()
	if len(msgs) != 3 {
		t.Errorf("got %d messages, want 3 (summary + 2 surviving listings)", len(msgs))
	}
}

func TestSendBatchCancelledContext(t *testing.T) {
	sender := &mockSender{}
	n := New(sender, testLogger(), 0, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.SendBatch(ctx, 100, testBatch())
	if err == nil {
		t.Fatal("expected error when context is cancelled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
