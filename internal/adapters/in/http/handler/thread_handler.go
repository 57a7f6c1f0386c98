// internal/adapters/in/http/handler/thread_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coplace/internal/adapters/in/http/middleware"
	usecase "coplace/internal/application/usecase"
	"coplace/internal/domain/common"
	threaddom "coplace/internal/domain/thread"
)

const defaultTrending = 5

// ThreadHandler serves the feed.
//
// - GET    /threads
// - GET    /threads/trending?n=
// - POST   /threads               {content, replyTo}
// - GET    /threads/{id}/replies
// - PUT    /threads/{id}/like
// - DELETE /threads/{id}/like
type ThreadHandler struct {
	feed  *usecase.FeedUsecase
	clock common.Clock
}

func NewThreadHandler(feed *usecase.FeedUsecase, clock common.Clock) *ThreadHandler {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &ThreadHandler{feed: feed, clock: clock}
}

type threadView struct {
	threaddom.Thread
	LikeCount int                 `json:"likeCount"`
	Age       string              `json:"age"`
	Segments  []threaddom.Segment `json:"segments"`
}

func toThreadViews(ts []threaddom.Thread, now time.Time) []threadView {
	out := make([]threadView, 0, len(ts))
	for _, t := range ts {
		out = append(out, toThreadView(t, now))
	}
	return out
}

func toThreadView(t threaddom.Thread, now time.Time) threadView {
	if t.Likes == nil {
		t.Likes = []string{}
	}
	return threadView{
		Thread:    t,
		LikeCount: t.LikeCount(),
		Age:       threaddom.RelativeAge(now, t.CreatedAt),
		Segments:  threaddom.Segments(t.Content),
	}
}

func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ready":   h.feed.Ready(),
		"threads": toThreadViews(h.feed.Threads(), h.clock.Now()),
	})
}

func (h *ThreadHandler) Trending(w http.ResponseWriter, r *http.Request) {
	n := parseIntDefault(r.URL.Query().Get("n"), defaultTrending)
	writeJSON(w, http.StatusOK, map[string]any{"hashtags": h.feed.TrendingHashtags(n)})
}

type postRequest struct {
	Content string `json:"content"`
	ReplyTo string `json:"replyTo"`
}

func (h *ThreadHandler) Post(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	t, err := h.feed.Post(r.Context(), sess, req.Content, req.ReplyTo)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toThreadView(t, h.clock.Now()))
}

func (h *ThreadHandler) Replies(w http.ResponseWriter, r *http.Request) {
	ts, err := h.feed.Replies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"replies": toThreadViews(ts, h.clock.Now())})
}

func (h *ThreadHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, true)
}

func (h *ThreadHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, false)
}

func (h *ThreadHandler) toggleLike(w http.ResponseWriter, r *http.Request, like bool) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	id := chi.URLParam(r, "id")
	var err error
	if like {
		err = h.feed.Like(r.Context(), id, sess.UID)
	} else {
		err = h.feed.Unlike(r.Context(), id, sess.UID)
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
