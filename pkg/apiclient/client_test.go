package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api", CacheTTL: time.Minute, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c, srv
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "get:/places/:{}", CacheKey(http.MethodGet, "/places/", nil))
	assert.Equal(t, `get:/places/:{"a":"1","b":"2"}`, CacheKey("GET", "/places/", Params{"b": "2", "a": "1"}))
}

func TestGet_CachesUntilCleared(t *testing.T) {
	var hits atomic.Int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/places/", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":444,"slug":"testovoe-mesto","images":[]}]`)
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		places, err := c.ListPlaces(ctx)
		require.NoError(t, err)
		require.Len(t, places, 1)
		assert.Equal(t, "testovoe-mesto", places[0].Identifier())
	}
	assert.Equal(t, int32(1), hits.Load())

	assert.True(t, c.ClearCacheFor(PlacesPath, nil))
	assert.False(t, c.ClearCacheFor(PlacesPath, nil))
	_, err := c.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	c.ClearCache()
	_, err = c.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestGet_ParamsAreSeparateEntries(t *testing.T) {
	var hits atomic.Int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"q":"`+r.URL.Query().Get("q")+`"}`)
	}))
	ctx := context.Background()

	var out map[string]string
	require.NoError(t, c.Get(ctx, "/search/", Params{"q": "a"}, &out))
	assert.Equal(t, "a", out["q"])
	require.NoError(t, c.Get(ctx, "/search/", Params{"q": "b"}, &out))
	assert.Equal(t, "b", out["q"])
	require.NoError(t, c.Get(ctx, "/search/", Params{"q": "a"}, &out))
	assert.Equal(t, "a", out["q"])
	assert.Equal(t, int32(2), hits.Load())
}

func TestMutationsInvalidate(t *testing.T) {
	var listHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/places/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/places/":
			listHits.Add(1)
			_, _ = io.WriteString(w, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/places/":
			var in map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "Дача", in["name"])
			_, hasRating := in["rating"]
			assert.False(t, hasRating, "nil fields are omitted")
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"id":445,"slug":"dacha","name":"Дача","images":[]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/places/dacha/upload_images/":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Len(t, r.MultipartForm.File["images"], 2)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `[{"id":1,"order":0},{"id":2,"order":1}]`)
		default:
			http.NotFound(w, r)
		}
	})
	c, _ := newClient(t, mux)
	ctx := context.Background()

	_, err := c.ListPlaces(ctx)
	require.NoError(t, err)

	name := "Дача"
	p, err := c.CreatePlace(ctx, PlaceInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "dacha", p.Slug)

	_, err = c.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listHits.Load())

	images, err := c.UploadImages(ctx, p.Identifier(), []File{{Name: "a.jpg", Data: []byte("a")}, {Name: "b.jpg", Data: []byte("b")}})
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestErrors_Classify(t *testing.T) {
	c, srv := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Место с идентификатором 9 не существует"}`)
	}))

	_, err := c.GetPlace(context.Background(), "9")
	require.Error(t, err)
	assert.Equal(t, KindResponse, Classify(err))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, "Место с идентификатором 9 не существует", respErr.Message)
	assert.False(t, IsOffline(err))

	// nothing listens there any more
	srv.Close()
	_, err = c.GetPlace(context.Background(), "10")
	require.Error(t, err)
	assert.Equal(t, KindNoResponse, Classify(err))
	assert.True(t, IsOffline(err))

	_, err = New(Config{BaseURL: "::not a url"})
	assert.Equal(t, KindSetup, Classify(err))
	assert.Equal(t, KindUnknown, Classify(errors.New("other")))
	assert.Equal(t, KindUnknown, Classify(nil))
}

func TestErrors_ErrorField(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Файл не был загружен"}`)
	}))

	_, err := c.Upload(context.Background(), File{Name: "a.png", Data: []byte("x")})
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "Файл не был загружен", respErr.Message)
	assert.Contains(t, err.Error(), "400")
}

func TestCanceledContextIsNotOffline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	c, err := New(Config{BaseURL: "http://" + ln.Addr().String() + "/api", Logger: zerolog.Nop()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ListPlaces(ctx)
	require.Error(t, err)
	assert.False(t, IsOffline(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUsers(t *testing.T) {
	var gets atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/anna/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			_, _ = io.WriteString(w, `{"username":"anna","name":"anna","email":"anna@example.com","avatar":null}`)
		case http.MethodPatch:
			_, _ = io.WriteString(w, `{"username":"anna","name":"anna","email":"anna@example.com","avatar":null,"description":"hi"}`)
		}
	})
	c, _ := newClient(t, mux)
	ctx := context.Background()

	u, err := c.GetProfile(ctx, "anna")
	require.NoError(t, err)
	assert.Nil(t, u.Avatar)

	u, err = c.UpdateDescription(ctx, "anna", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", u.Description)

	_, err = c.GetProfile(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, int32(2), gets.Load())
}
