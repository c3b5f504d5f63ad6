package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contact-solution/leadbot/core/flow"
	"github.com/contact-solution/leadbot/core/lead"
	"github.com/contact-solution/leadbot/core/session"
	"github.com/contact-solution/leadbot/core/whatsapp"
)

type recordingSink struct {
	mu    sync.Mutex
	leads []lead.Lead
	fail  bool
}

func (s *recordingSink) Record(_ context.Context, l lead.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.leads = append(s.leads, l)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func (s *recordingSink) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

type recordingReplier struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingReplier) SendText(_ context.Context, _, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, body)
	return nil
}

func (r *recordingReplier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

func newTestProcessor(t *testing.T) (*Processor, *recordingSink, *recordingReplier, session.Store) {
	t.Helper()
	sink := &recordingSink{}
	replier := &recordingReplier{}
	store := session.NewMemoryStore(30 * time.Minute)
	proc := NewProcessor(Options{
		Store:   store,
		Sink:    sink,
		Replier: replier,
	})
	return proc, sink, replier, store
}

// sendAllSeq makes message ids unique across sendAll calls so distinct
// messages are never accidentally deduplicated.
var sendAllSeq atomic.Uint64

func sendAll(t *testing.T, proc *Processor, phone string, texts []string) {
	t.Helper()
	for _, text := range texts {
		msg := whatsapp.Message{
			Phone:     phone,
			Text:      text,
			MessageID: fmt.Sprintf("wamid.%s.%d", phone, sendAllSeq.Add(1)),
		}
		require.NoError(t, proc.HandleMessage(context.Background(), msg))
	}
}

var happyPath = []string{"oi", "1", "maria", "maria@example.com", "iPhone 13", "01001000", "quero orçamento", "1"}

func TestFullIntakeRecordsOneLead(t *testing.T) {
	proc, sink, replier, store := newTestProcessor(t)
	phone := "5511999887766"

	sendAll(t, proc, phone, happyPath)

	require.Equal(t, 1, sink.count())
	got := sink.leads[0]
	assert.Equal(t, phone, got.Phone)
	assert.Equal(t, flow.DepartmentSales, got.Department)
	assert.Equal(t, "Maria", got.Name)
	assert.Equal(t, "maria@example.com", got.Email)
	assert.Equal(t, "iPhone 13", got.Product)
	assert.Equal(t, "01001-000", got.CEP)
	assert.Equal(t, "quero orçamento", got.Need)

	assert.Equal(t, flow.MsgDone, replier.last())

	// Session reset for the next lead.
	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepStart, sess.Step)
	assert.Empty(t, sess.Answers)
}

func TestShortCEPNeverAdvances(t *testing.T) {
	proc, sink, _, store := newTestProcessor(t)
	phone := "5511988776655"

	sendAll(t, proc, phone, []string{"oi", "2", "joão", "pular", "notebook", "12345"})

	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepCEP, sess.Step)
	assert.Zero(t, sink.count())
}

func TestFailedHandoffRetriesOnNextMessage(t *testing.T) {
	proc, sink, replier, store := newTestProcessor(t)
	phone := "5511977665544"

	sink.setFail(true)
	sendAll(t, proc, phone, happyPath)

	assert.Zero(t, sink.count())
	assert.Equal(t, flow.MsgPending, replier.last())

	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	require.Equal(t, flow.StepDone, sess.Step)
	assert.Equal(t, "Maria", sess.Answers[flow.FieldName])

	// Still failing: any inbound text retries and stays parked.
	sendAll(t, proc, phone, []string{"e aí?"})
	assert.Zero(t, sink.count())
	assert.Equal(t, flow.MsgPending, replier.last())

	// Sink recovers; the next unrelated message completes the hand-off.
	sink.setFail(false)
	sendAll(t, proc, phone, []string{"oi de novo"})

	require.Equal(t, 1, sink.count())
	assert.Equal(t, "Maria", sink.leads[0].Name)
	assert.Equal(t, flow.MsgDone, replier.last())

	sess, err = store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepStart, sess.Step)
}

func TestRedeliveredMessageAdvancesOnce(t *testing.T) {
	proc, _, _, store := newTestProcessor(t)
	phone := "5511966554433"

	msg := whatsapp.Message{Phone: phone, Text: "oi", MessageID: "wamid.dup"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = proc.HandleMessage(context.Background(), msg)
		}()
	}
	wg.Wait()

	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepMenu, sess.Step)
}

func TestConcurrentDistinctMessagesStaySerialized(t *testing.T) {
	proc, _, _, store := newTestProcessor(t)
	phone := "5511955443322"

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := whatsapp.Message{
				Phone:     phone,
				Text:      "oi",
				MessageID: fmt.Sprintf("wamid.%d", i),
			}
			_ = proc.HandleMessage(context.Background(), msg)
		}(i)
	}
	wg.Wait()

	// "oi" at the menu step is not a valid option, so however the four
	// messages interleave the session lands at MENU and stays there.
	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepMenu, sess.Step)
}

func TestRateLimitDropsBurst(t *testing.T) {
	sink := &recordingSink{}
	replier := &recordingReplier{}
	store := session.NewMemoryStore(30 * time.Minute)
	proc := NewProcessor(Options{
		Store:             store,
		Sink:              sink,
		Replier:           replier,
		RateLimitInterval: time.Minute,
	})
	phone := "5511944332211"

	sendAll(t, proc, phone, []string{"oi", "1"})

	// The second message fell inside the cool-down window.
	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepMenu, sess.Step)
	assert.Len(t, replier.replies, 1)
}

func TestRateLimitedRedeliveryRetriesAfterWindow(t *testing.T) {
	sink := &recordingSink{}
	replier := &recordingReplier{}
	store := session.NewMemoryStore(30 * time.Minute)
	proc := NewProcessor(Options{
		Store:             store,
		Sink:              sink,
		Replier:           replier,
		RateLimitInterval: time.Minute,
	})
	now := time.Now()
	proc.limiter.now = func() time.Time { return now }
	phone := "5511922110099"
	ctx := context.Background()

	first := whatsapp.Message{Phone: phone, Text: "oi", MessageID: "wamid.first"}
	require.NoError(t, proc.HandleMessage(ctx, first))

	// Falls inside the cool-down window and is dropped.
	burst := whatsapp.Message{Phone: phone, Text: "1", MessageID: "wamid.burst"}
	require.NoError(t, proc.HandleMessage(ctx, burst))

	sess, err := store.GetOrCreate(ctx, phone)
	require.NoError(t, err)
	require.Equal(t, flow.StepMenu, sess.Step)

	// The platform redelivers the dropped message after the window; it
	// must not be swallowed as a duplicate.
	now = now.Add(2 * time.Minute)
	require.NoError(t, proc.HandleMessage(ctx, burst))

	sess, err = store.GetOrCreate(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepName, sess.Step)
	assert.Equal(t, flow.DepartmentSales, sess.Answers[flow.FieldDepartment])
}

func TestResetKeywordClearsSession(t *testing.T) {
	proc, sink, replier, store := newTestProcessor(t)
	phone := "5511933221100"

	sendAll(t, proc, phone, []string{"oi", "1", "maria", "reset"})

	sess, err := store.GetOrCreate(context.Background(), phone)
	require.NoError(t, err)
	assert.Equal(t, flow.StepStart, sess.Step)
	assert.Empty(t, sess.Answers)
	assert.Zero(t, sink.count())
	assert.Contains(t, replier.last(), "recomeçar")
}
