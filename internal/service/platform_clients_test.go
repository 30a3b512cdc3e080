package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type stubMedia struct {
	data []byte
	kind types.Type
	err  error
}

func (s *stubMedia) Fetch(ctx context.Context, url string) ([]byte, types.Type, error) {
	if s.err != nil {
		return nil, types.Unknown, s.err
	}
	return s.data, s.kind, nil
}

func (s *stubMedia) Mirror(ctx context.Context, imageURL string) (string, error) {
	return imageURL, nil
}

func jpegStub() *stubMedia {
	return &stubMedia{data: []byte{0xFF, 0xD8, 0xFF}, kind: matchers.TypeJpeg}
}

func TestInstagramPublishRunsContainerFlow(t *testing.T) {
	var statusFields string
	var publishPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig-1/media":
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/container-1":
			statusFields = r.URL.Query().Get("fields")
			json.NewEncoder(w).Encode(map[string]string{"status_code": "FINISHED"})
		case r.Method == http.MethodPost && r.URL.Path == "/ig-1/media_publish":
			json.NewDecoder(r.Body).Decode(&publishPayload)
			json.NewEncoder(w).Encode(map[string]string{"id": "ig-media-9"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := &instagramClient{
		cfg:     config.Instagram{AccountID: "ig-1", AccessToken: "tok"},
		baseURL: srv.URL,
		client:  srv.Client(),
	}

	img := "https://images.example.com/a.jpg"
	id, err := client.Publish(context.Background(), "hello world", &img)
	require.NoError(t, err)
	require.Equal(t, "ig-media-9", id)
	require.Equal(t, "status_code", statusFields)
	require.Equal(t, "container-1", publishPayload["creation_id"])
}

func TestInstagramPublishFailsOnContainerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/ig-1/media":
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/container-1":
			json.NewEncoder(w).Encode(map[string]string{"status_code": "ERROR"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := &instagramClient{
		cfg:     config.Instagram{AccountID: "ig-1", AccessToken: "tok"},
		baseURL: srv.URL,
		client:  srv.Client(),
	}

	img := "https://images.example.com/a.jpg"
	_, err := client.Publish(context.Background(), "hello world", &img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ERROR")
}

func TestInstagramPublishRequiresImage(t *testing.T) {
	client := &instagramClient{
		cfg:     config.Instagram{AccountID: "ig-1", AccessToken: "tok"},
		baseURL: "http://unused.invalid",
		client:  http.DefaultClient,
	}

	_, err := client.Publish(context.Background(), "hello world", nil)
	require.Error(t, err)
}

func TestFacebookPublishUploadsPhotoWithPageToken(t *testing.T) {
	var photoMessage, photoToken, photoFilename string
	var photoBytes []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/page-1":
			json.NewEncoder(w).Encode(map[string]string{
				"id":           "page-1",
				"name":         "Acme",
				"access_token": "page-token",
			})
		case r.Method == http.MethodPost && r.URL.Path == "/page-1/photos":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			photoMessage = r.FormValue("message")
			photoToken = r.FormValue("access_token")
			if file, header, err := r.FormFile("source"); err == nil {
				photoFilename = header.Filename
				photoBytes, _ = io.ReadAll(file)
				file.Close()
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "photo-7", "post_id": "page-1_88"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := &facebookClient{
		cfg:     config.Facebook{PageID: "page-1", AccessToken: "user-token"},
		baseURL: srv.URL,
		media:   jpegStub(),
		client:  srv.Client(),
	}

	img := "https://images.example.com/a.jpg"
	id, err := client.Publish(context.Background(), "launch day", &img)
	require.NoError(t, err)
	require.Equal(t, "photo-7", id)
	require.Equal(t, "launch day", photoMessage)
	require.Equal(t, "page-token", photoToken)
	require.Equal(t, "photo.jpg", photoFilename)
	require.Equal(t, []byte{0xFF, 0xD8, 0xFF}, photoBytes)
}

func TestFacebookPublishFallsBackToConfiguredToken(t *testing.T) {
	var photoToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/page-1":
			w.WriteHeader(http.StatusInternalServerError)
		case r.Method == http.MethodPost && r.URL.Path == "/page-1/photos":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			photoToken = r.FormValue("access_token")
			json.NewEncoder(w).Encode(map[string]string{"id": "photo-7"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := &facebookClient{
		cfg:     config.Facebook{PageID: "page-1", AccessToken: "user-token"},
		baseURL: srv.URL,
		media:   jpegStub(),
		client:  srv.Client(),
	}

	img := "https://images.example.com/a.jpg"
	_, err := client.Publish(context.Background(), "launch day", &img)
	require.NoError(t, err)
	require.Equal(t, "user-token", photoToken)
}

func TestFacebookPublishRequiresImage(t *testing.T) {
	client := &facebookClient{
		cfg:     config.Facebook{PageID: "page-1", AccessToken: "user-token"},
		baseURL: "http://unused.invalid",
		media:   jpegStub(),
		client:  http.DefaultClient,
	}

	_, err := client.Publish(context.Background(), "launch day", nil)
	require.Error(t, err)
}

func TestPinterestPublishUploadsThenCreatesPin(t *testing.T) {
	var mediaAuth string
	var pinReq transfer.PinterestPinRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/media":
			mediaAuth = r.Header.Get("Authorization")
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if _, _, err := r.FormFile("image"); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "media-5"})
		case r.Method == http.MethodPost && r.URL.Path == "/pins":
			json.NewDecoder(r.Body).Decode(&pinReq)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "pin-42"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewPinterestClient(config.Pinterest{AccessToken: "pin-tok", BoardID: "board-1"}, jpegStub()).(*pinterestClient)
	client.baseURL = srv.URL

	img := "https://images.example.com/a.jpg"
	id, err := client.Publish(context.Background(), "cozy desk setup", &img)
	require.NoError(t, err)
	require.Equal(t, "pin-42", id)
	require.Equal(t, "Bearer pin-tok", mediaAuth)
	require.Equal(t, "board-1", pinReq.BoardID)
	require.Equal(t, "media-5", pinReq.MediaSource.MediaID)
	require.Equal(t, "cozy desk setup", pinReq.Title)
}

func TestPinterestPinFailureSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/media":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "media-5"})
		case r.Method == http.MethodPost && r.URL.Path == "/pins":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{"code": 4, "message": "Board not found"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewPinterestClient(config.Pinterest{AccessToken: "pin-tok", BoardID: "board-1"}, jpegStub()).(*pinterestClient)
	client.baseURL = srv.URL

	img := "https://images.example.com/a.jpg"
	_, err := client.Publish(context.Background(), "cozy desk setup", &img)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Board not found")
}
