package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eyewear-store/internal/auth"
	"eyewear-store/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testIssuer = auth.NewIssuer("handlers-test-secret", time.Hour)

func newMockDB(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// userRouter mounts handler behind the real bearer middleware.
func userRouter(method, path string, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, middleware.UserAuth(testIssuer), handler)
	return r
}

func bearer(t *testing.T, userID primitive.ObjectID) string {
	token, err := testIssuer.Issue(userID, "user@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(r http.Handler, method, target string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func emptyCursor(ns string) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
}

// startedCommand returns the first recorded command with the given name.
func startedCommand(mt *mtest.T, name string) bson.Raw {
	for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
		if evt.CommandName == name {
			return evt.Command
		}
	}
	return nil
}
