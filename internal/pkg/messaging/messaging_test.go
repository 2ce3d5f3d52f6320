package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "carrier-pigeon", Options{})

	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("New() error = %v, want ErrUnknownDriver", err)
	}
}

func TestNew_Memory(t *testing.T) {
	m, err := New(context.Background(), " Memory ", Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	if _, ok := m.(*Memory); !ok {
		t.Fatalf("New() = %T, want *Memory", m)
	}
}

func TestMessage_Header(t *testing.T) {
	msg := &Message{Headers: map[string]string{"Cid": "abc"}}

	if got := msg.Header("cID"); got != "abc" {
		t.Fatalf("Header() = %q, want abc", got)
	}
	if got := msg.Header("missing"); got != "" {
		t.Fatalf("Header() = %q, want empty", got)
	}
	var nilMsg *Message
	if got := nilMsg.Header("cID"); got != "" {
		t.Fatalf("nil Header() = %q, want empty", got)
	}
}

func TestInvoke_RecoversPanic(t *testing.T) {
	h := func(context.Context, *Message) error { panic("boom") }

	err := invoke(context.Background(), DriverMemory, h, &Message{Topic: "t"})

	if err == nil {
		t.Fatalf("invoke() error = nil, want panic error")
	}
}

func TestMemory_ConsumeValidation(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	defer m.Close()
	h := func(context.Context, *Message) error { return nil }

	if err := m.Consume(context.Background(), "", h); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("Consume() error = %v, want ErrTopicRequired", err)
	}
	if err := m.Consume(context.Background(), "t", nil); !errors.Is(err, ErrHandlerRequired) {
		t.Fatalf("Consume() error = %v, want ErrHandlerRequired", err)
	}
}

func TestMemory_DeliversBacklog(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{})
	defer m.Close()
	err := m.Publish(context.Background(), "otp", &Message{
		Body:    []byte(`{"email":"a@b.c"}`),
		Headers: map[string]string{"cID": "c1"},
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got := make(chan *Message, 1)

	// Act
	go func() {
		_ = m.Consume(ctx, "otp", func(_ context.Context, msg *Message) error {
			got <- msg
			return nil
		}, WithGroup("mailer"))
	}()

	// Assert
	select {
	case msg := <-got:
		if string(msg.Body) != `{"email":"a@b.c"}` {
			t.Fatalf("Body = %s", msg.Body)
		}
		if msg.Header("cID") != "c1" || msg.Topic != "otp" || msg.Attempt != 1 || msg.ID == "" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-ctx.Done():
		t.Fatalf("message not delivered")
	}
}

func TestMemory_RedeliversUntilMaxAttempts(t *testing.T) {
	// Arrange
	m := NewMemory(MemoryConfig{MaxAttempts: 3})
	defer m.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	attempts := make(chan int, 10)

	go func() {
		_ = m.Consume(ctx, "otp", func(_ context.Context, msg *Message) error {
			attempts <- msg.Attempt
			return errors.New("smtp down")
		})
	}()

	// Act
	if err := m.Publish(ctx, "otp", &Message{Body: []byte("x")}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// Assert
	for want := 1; want <= 3; want++ {
		select {
		case got := <-attempts:
			if got != want {
				t.Fatalf("attempt = %d, want %d", got, want)
			}
		case <-ctx.Done():
			t.Fatalf("attempt %d not delivered", want)
		}
	}
	deadline := time.Now().Add(time.Second)
	for m.Stats().Dropped != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Stats().Dropped = %d, want 1", m.Stats().Dropped)
		}
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case got := <-attempts:
		t.Fatalf("unexpected extra attempt %d", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemory_ConsumeReturnsOnCancel(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	defer m.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- m.Consume(ctx, "otp", func(context.Context, *Message) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Consume() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Consume() did not return")
	}
}

func TestMemory_PublishAfterClose(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	_ = m.Close()

	if err := m.Publish(context.Background(), "otp", &Message{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Publish() error = %v, want ErrClosed", err)
	}
}
