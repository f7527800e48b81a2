package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/model"
)

// fakeBackend is an in-memory stand-in for the document-control service,
// faithful to its routes and its fixed-locale error bodies.
type fakeBackend struct {
	mux     *http.ServeMux
	nextID  int64
	docs    map[int64]model.Document
	history map[int64][]model.HistoryEntry
	// disablePrimaryDelete makes DELETE /documents/{id} always answer 404,
	// regardless of whether the document exists.
	disablePrimaryDelete bool
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		nextID:  1,
		docs:    map[int64]model.Document{},
		history: map[int64][]model.HistoryEntry{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		out := []model.Document{}
		for _, d := range b.docs {
			out = append(out, d)
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /documents", func(w http.ResponseWriter, r *http.Request) {
		var req model.DocumentCreate
		_ = json.NewDecoder(r.Body).Decode(&req)
		doc := model.Document{
			ID: b.nextID, Title: req.Title, DocType: req.DocType,
			ExpiryDate: req.ExpiryDate, Status: "active",
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}
		b.nextID++
		b.docs[doc.ID] = doc
		writeJSON(w, http.StatusOK, doc)
	})
	mux.HandleFunc("POST /documents/clear", func(w http.ResponseWriter, r *http.Request) {
		n := len(b.docs)
		b.docs = map[int64]model.Document{}
		b.history = map[int64][]model.HistoryEntry{}
		writeJSON(w, http.StatusOK, model.ClearResult{Status: "cleared", Deleted: n})
	})
	mux.HandleFunc("POST /documents/{id}/renew", func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		doc, ok := b.docs[id]
		if !ok {
			writeNotFound(w)
			return
		}
		var req model.DocumentRenew
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.history[id] = append([]model.HistoryEntry{{
			ID: int64(len(b.history[id]) + 1), DocumentID: id,
			OldExpiryDate: doc.ExpiryDate, NewExpiryDate: req.NewExpiryDate,
			UpdatedAt: time.Now().UTC(),
		}}, b.history[id]...)
		doc.ExpiryDate = req.NewExpiryDate
		doc.UpdatedAt = time.Now().UTC()
		b.docs[id] = doc
		writeJSON(w, http.StatusOK, doc)
	})
	mux.HandleFunc("DELETE /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		if b.disablePrimaryDelete {
			writeNotFound(w)
			return
		}
		if _, ok := b.docs[id]; !ok {
			writeNotFound(w)
			return
		}
		delete(b.docs, id)
		delete(b.history, id)
		writeJSON(w, http.StatusOK, model.DeleteResult{Status: "deleted", ID: id})
	})
	mux.HandleFunc("POST /documents/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		if _, ok := b.docs[id]; !ok {
			writeNotFound(w)
			return
		}
		delete(b.docs, id)
		delete(b.history, id)
		writeJSON(w, http.StatusOK, model.DeleteResult{Status: "deleted", ID: id})
	})
	mux.HandleFunc("GET /documents/{id}/history", func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		if _, ok := b.docs[id]; !ok {
			writeNotFound(w)
			return
		}
		entries := b.history[id]
		if entries == nil {
			entries = []model.HistoryEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})
	mux.HandleFunc("POST /reminders/send", func(w http.ResponseWriter, r *http.Request) {
		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = "email"
		}
		if mode != "email" && mode != "webhook" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Режим должен быть email или webhook"})
			return
		}
		target := r.URL.Query().Get("target")
		if target == "" {
			target = "test@example.com"
		}
		writeJSON(w, http.StatusOK, model.ReminderResult{
			Sent: len(b.docs), Mode: mode, Target: target,
			Details: []string{mode + ":" + target},
		})
	})
	b.mux = mux
	return b
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) { b.mux.ServeHTTP(w, r) }

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Документ не найден"})
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func dateOffset(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, newFakeBackend())
	require.NoError(t, c.Health(context.Background()))
}

func TestCreateAndList(t *testing.T) {
	c := newTestClient(t, newFakeBackend())
	ctx := context.Background()

	doc, err := c.Create(ctx, model.DocumentCreate{
		Title: "Паспорт", DocType: "Паспорт", ExpiryDate: "2026-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.ID)
	assert.Equal(t, "2026-12-31", doc.ExpiryDate)

	docs, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Паспорт", docs[0].Title)
}

func TestRequestErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, newFakeBackend())
	_, err := c.History(context.Background(), 999)
	require.Error(t, err)

	re, ok := err.(*RequestError)
	require.True(t, ok, "expected *RequestError, got %T", err)
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Equal(t, "Документ не найден", re.Detail)
	assert.Equal(t, KindNotFound, re.Kind)
	assert.True(t, IsNotFound(err))
}

func TestRequestErrorGenericFallback(t *testing.T) {
	// A backend that violates the contract: plain-text 500 with no detail.
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, h)
	err := c.Health(context.Background())
	require.Error(t, err)

	re, ok := err.(*RequestError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, re.Status)
	assert.Contains(t, re.Detail, "ошибка запроса")
	assert.Equal(t, KindGeneric, re.Kind)
	assert.False(t, IsNotFound(err))
}

func TestDeletePrimaryRoute(t *testing.T) {
	b := newFakeBackend()
	c := newTestClient(t, b)
	ctx := context.Background()

	doc, err := c.Create(ctx, model.DocumentCreate{Title: "x", DocType: "t", ExpiryDate: "2026-01-01"})
	require.NoError(t, err)

	already, err := c.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.Empty(t, b.docs)
}

func TestDeleteFallsBackToPostRoute(t *testing.T) {
	b := newFakeBackend()
	b.disablePrimaryDelete = true
	c := newTestClient(t, b)
	ctx := context.Background()

	doc, err := c.Create(ctx, model.DocumentCreate{Title: "x", DocType: "t", ExpiryDate: "2026-01-01"})
	require.NoError(t, err)

	already, err := c.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, already, "fallback route succeeded, so not alreadyDeleted")
	assert.Empty(t, b.docs)
}

func TestDeleteBothRoutesNotFoundIsNoop(t *testing.T) {
	c := newTestClient(t, newFakeBackend())

	already, err := c.Delete(context.Background(), 42)
	require.NoError(t, err, "double not-found must resolve as a no-op")
	assert.True(t, already)
}

func TestDeleteOtherErrorPropagates(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "база недоступна"})
	})
	c := newTestClient(t, h)

	_, err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	re, ok := err.(*RequestError)
	require.True(t, ok)
	assert.Equal(t, "база недоступна", re.Detail)
	assert.Equal(t, KindGeneric, re.Kind)
}

func TestDeleteAll(t *testing.T) {
	c := newTestClient(t, newFakeBackend())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Create(ctx, model.DocumentCreate{
			Title: fmt.Sprintf("doc %d", i), DocType: "t", ExpiryDate: "2026-01-01",
		})
		require.NoError(t, err)
	}
	n, err := c.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSendRemindersQueryParams(t *testing.T) {
	var gotQuery string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, model.ReminderResult{Sent: 2, Mode: "webhook", Target: "https://hook"})
	})
	c := newTestClient(t, h)

	res, err := c.SendReminders(context.Background(), 14, "webhook", "https://hook")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Contains(t, gotQuery, "days=14")
	assert.Contains(t, gotQuery, "mode=webhook")
	assert.Contains(t, gotQuery, "target=")
}

func TestSendRemindersBadModeDetail(t *testing.T) {
	c := newTestClient(t, newFakeBackend())
	_, err := c.SendReminders(context.Background(), 30, "pigeon", "")
	require.Error(t, err)
	re, ok := err.(*RequestError)
	require.True(t, ok)
	assert.Contains(t, re.Detail, "email или webhook")
}

// TestRenewMovesBucketAndAppendsHistory walks the full lifecycle: a document
// created 45 days out sits in the mid bucket; renewing it to 10 days out
// moves it (after reload) to soon and appends exactly one history entry with
// matching old/new dates.
func TestRenewMovesBucketAndAppendsHistory(t *testing.T) {
	c := newTestClient(t, newFakeBackend())
	ctx := context.Background()
	now := time.Now()

	doc, err := c.Create(ctx, model.DocumentCreate{
		Title: "Страховка", DocType: "Страховка", ExpiryDate: dateOffset(45),
	})
	require.NoError(t, err)

	docs, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, expiry.StatusMid, expiry.Classify(docs[0].ExpiryDate, now))
	require.Len(t, expiry.Filter(docs, expiry.StatusMid, "", now), 1)

	renewed, err := c.Renew(ctx, doc.ID, dateOffset(10))
	require.NoError(t, err)
	assert.Equal(t, dateOffset(10), renewed.ExpiryDate)

	docs, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, expiry.StatusSoon, expiry.Classify(docs[0].ExpiryDate, now))
	assert.Empty(t, expiry.Filter(docs, expiry.StatusMid, "", now))

	entries, err := c.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, dateOffset(45), entries[0].OldExpiryDate)
	assert.Equal(t, dateOffset(10), entries[0].NewExpiryDate)
}

func TestDoRespectsContext(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c := newTestClient(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.Health(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context deadline exceeded") ||
		strings.Contains(err.Error(), "canceled"))
}
