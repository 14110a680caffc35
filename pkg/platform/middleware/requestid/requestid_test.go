package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"casetriage/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	var gotID, gotActor string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = requestcontext.RequestID(r.Context())
		gotActor = requestcontext.Actor(r.Context())
	}))

	t.Run("mints an id when none is sent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(gotID)
		assert.NoError(t, err)
		assert.Equal(t, gotID, rec.Header().Get(HeaderRequestID))
		assert.Empty(t, gotActor)
	})

	t.Run("propagates inbound id and operator", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		req.Header.Set(HeaderActor, "officer-7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", gotID)
		assert.Equal(t, "officer-7", gotActor)
	})
}
