package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/sokrates/internal/llm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestCreateLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("Mathematics", "Learn derivatives", "en")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Empty(t, sess.Messages)

	loaded, err := store.Load(sess.ID)
	require.NoError(t, err)
	require.Equal(t, "Mathematics", loaded.Subject)
	require.Equal(t, "Learn derivatives", loaded.Goal)
	require.Equal(t, "en", loaded.Language)
	require.NotNil(t, loaded.Messages, "messages should round-trip as an empty slice, not nil")
}

func TestCreateDefaultsLanguage(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("Physics", "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Language != "en" {
		t.Errorf("language = %q, want en", sess.Language)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("Mathematics", "", "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 10
	for i := range n {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		if _, err := store.Append(sess.ID, ChatMessage{Role: role, Content: fmt.Sprintf("message %d", i)}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	loaded, err := store.Load(sess.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Messages) != n {
		t.Fatalf("got %d messages, want %d", len(loaded.Messages), n)
	}
	for i, msg := range loaded.Messages {
		want := fmt.Sprintf("message %d", i)
		if msg.Content != want {
			t.Errorf("message %d = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestLoadMissingSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("no-such-id")
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ErrNotFound", err)
	}
	if notFound.ID != "no-such-id" {
		t.Errorf("not found id = %q", notFound.ID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.Create("Chemistry", "", "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	existed, err := store.Delete(sess.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("first delete should report the record existed")
	}

	existed, err = store.Delete(sess.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if existed {
		t.Error("second delete should report nothing existed")
	}

	if _, err := store.Load(sess.ID); err == nil {
		t.Error("expected load to fail after delete")
	}
}

func TestListSortedByID(t *testing.T) {
	store := newTestStore(t)

	for i := range 3 {
		if _, err := store.Create(fmt.Sprintf("Subject %d", i), "", "en"); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d summaries, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID >= items[i].ID {
			t.Errorf("list not sorted: %q before %q", items[i-1].ID, items[i].ID)
		}
	}
}

func TestFindBySubjectGoal(t *testing.T) {
	store := newTestStore(t)

	withGoal, err := store.Create("Mathematics", "Learn derivatives", "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	noGoal, err := store.Create("Mathematics", "", "en")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, err := store.FindBySubjectGoal("Mathematics", "Learn derivatives")
	if err != nil {
		t.Fatalf("FindBySubjectGoal: %v", err)
	}
	if id != withGoal.ID {
		t.Errorf("found %q, want %q", id, withGoal.ID)
	}

	id, err = store.FindBySubjectGoal("Mathematics", "")
	if err != nil {
		t.Fatalf("FindBySubjectGoal: %v", err)
	}
	if id != noGoal.ID {
		t.Errorf("found %q, want %q", id, noGoal.ID)
	}

	id, err = store.FindBySubjectGoal("History", "")
	if err != nil {
		t.Fatalf("FindBySubjectGoal: %v", err)
	}
	if id != "" {
		t.Errorf("found %q, want empty", id)
	}
}
