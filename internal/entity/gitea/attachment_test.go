package gitea

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestGetIssueAttachments тестирует получение метаданных вложений задачи
func TestGetIssueAttachments(t *testing.T) {
	tests := []struct {
		name          string
		responseCode  int
		responseBody  string
		expectError   bool
		expectedCount int
	}{
		{
			name:          "successful get attachments",
			responseCode:  200,
			responseBody:  `[{"id":1,"name":"screenshot.png","uuid":"aaa-bbb","browser_download_url":"https://gitea.example.com/attachments/aaa-bbb"}]`,
			expectedCount: 1,
		},
		{
			name:          "endpoint not supported by old server",
			responseCode:  404,
			responseBody:  `{"message":"Not Found"}`,
			expectedCount: 0,
		},
		{
			name:         "server error",
			responseCode: 500,
			responseBody: `{"message":"boom"}`,
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				expectedPath := "/api/v1/repos/testowner/testrepo/issues/5/assets"
				if r.URL.Path != expectedPath {
					t.Errorf("Expected path %s, got %s", expectedPath, r.URL.Path)
				}
				w.WriteHeader(tt.responseCode)
				if _, err := w.Write([]byte(tt.responseBody)); err != nil {
					t.Errorf("Failed to write response: %v", err)
				}
			}))
			defer server.Close()

			api := &API{GiteaURL: server.URL, Owner: "testowner", Repo: "testrepo", AccessToken: "testtoken"}

			attachments, err := api.GetIssueAttachments(context.Background(), 5)

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if len(attachments) != tt.expectedCount {
				t.Errorf("Expected %d attachments, got %d", tt.expectedCount, len(attachments))
			}
		})
	}
}

// TestGetCommentAttachments тестирует путь запроса вложений комментария
func TestGetCommentAttachments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedPath := "/api/v1/repos/testowner/testrepo/issues/comments/777/assets"
		if r.URL.Path != expectedPath {
			t.Errorf("Expected path %s, got %s", expectedPath, r.URL.Path)
		}
		if _, err := w.Write([]byte(`[{"id":2,"name":"log.txt","uuid":"ccc-ddd"}]`)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	api := &API{GiteaURL: server.URL, Owner: "testowner", Repo: "testrepo", AccessToken: "testtoken"}

	attachments, err := api.GetCommentAttachments(context.Background(), 777)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(attachments) != 1 || attachments[0].Name != "log.txt" {
		t.Errorf("Expected one attachment log.txt, got %+v", attachments)
	}
}

// TestResolveDownloadURL тестирует приоритет полей URL вложения
func TestResolveDownloadURL(t *testing.T) {
	api := &API{GiteaURL: "https://gitea.example.com"}

	tests := []struct {
		name     string
		att      Attachment
		expected string
	}{
		{
			name: "browser_download_url has top priority",
			att: Attachment{
				BrowserDownloadURL: "https://gitea.example.com/a/browser",
				DownloadURL:        "https://gitea.example.com/a/download",
				URL:                "https://gitea.example.com/a/url",
				UUID:               "uuid-1",
			},
			expected: "https://gitea.example.com/a/browser",
		},
		{
			name: "download_url when browser field empty",
			att: Attachment{
				DownloadURL: "https://gitea.example.com/a/download",
				URL:         "https://gitea.example.com/a/url",
			},
			expected: "https://gitea.example.com/a/download",
		},
		{
			name:     "url as third candidate",
			att:      Attachment{URL: "https://gitea.example.com/a/url"},
			expected: "https://gitea.example.com/a/url",
		},
		{
			name:     "uuid fallback builds attachments URL",
			att:      Attachment{UUID: "f87a21rc-123"},
			expected: "https://gitea.example.com/attachments/f87a21rc-123",
		},
		{
			name:     "nothing resolvable",
			att:      Attachment{Name: "ghost.bin"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := api.ResolveDownloadURL(tt.att); got != tt.expected {
				t.Errorf("ResolveDownloadURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestDetectImageType тестирует определение формата по магическим байтам
func TestDetectImageType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "jpeg signature",
			data:     []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00},
			expected: ".jpg",
		},
		{
			name:     "png signature",
			data:     append(append([]byte{}, pngHeader...), 0x00, 0x00),
			expected: ".png",
		},
		{
			name:     "gif87a signature",
			data:     []byte("GIF87a...."),
			expected: ".gif",
		},
		{
			name:     "gif89a signature",
			data:     []byte("GIF89a...."),
			expected: ".gif",
		},
		{
			name:     "webp riff container",
			data:     []byte("RIFF\x10\x00\x00\x00WEBPVP8 "),
			expected: ".webp",
		},
		{
			name:     "bmp signature",
			data:     []byte("BM\x36\x00"),
			expected: ".bmp",
		},
		{
			name:     "riff without webp tag",
			data:     []byte("RIFF\x10\x00\x00\x00WAVEfmt "),
			expected: "",
		},
		{
			name:     "plain text",
			data:     []byte("hello world"),
			expected: "",
		},
		{
			name:     "empty data",
			data:     nil,
			expected: "",
		},
		{
			name:     "truncated png header",
			data:     pngHeader[:4],
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectImageType(tt.data); got != tt.expected {
				t.Errorf("DetectImageType() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestIsImageFile тестирует классификацию файлов по расширению
func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"screenshot.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"anim.gif", true},
		{"pic.webp", true},
		{"diagram.svg", true},
		{"old.bmp", true},
		{"report.pdf", false},
		{"archive.tar.gz", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.expected {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

// TestSafeFileName тестирует нормализацию имени вложения
func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name unchanged",
			input:    "screenshot.png",
			expected: "screenshot.png",
		},
		{
			name:     "path components stripped",
			input:    "../../etc/passwd",
			expected: "passwd",
		},
		{
			name:     "nested path reduced to base",
			input:    "dir/sub/file.txt",
			expected: "file.txt",
		},
		{
			// NFD "й" (и + combining breve) должна схлопнуться в одну NFC руну
			name:     "decomposed cyrillic normalized to NFC",
			input:    "файл.png",
			expected: "файл.png",
		},
		{
			name:     "empty name falls back to default",
			input:    "",
			expected: "attachment",
		},
		{
			name:     "bare slash falls back to default",
			input:    "/",
			expected: "attachment",
		},
		{
			name:     "dot-dot falls back to default",
			input:    "..",
			expected: "attachment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFileName(tt.input); got != tt.expected {
				t.Errorf("SafeFileName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestDownloadAttachment тестирует скачивание с исправлением расширения
func TestDownloadAttachment(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), []byte("fake image data")...)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Токен должен передаваться и как query параметр, и в заголовке
		if r.URL.Query().Get("token") != "testtoken" {
			t.Errorf("Expected token query parameter, got %q", r.URL.Query().Get("token"))
		}
		if r.Header.Get("Authorization") != "token testtoken" {
			t.Errorf("Expected Authorization header, got %q", r.Header.Get("Authorization"))
		}
		if _, err := w.Write(payload); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	api := &API{GiteaURL: server.URL, Owner: "testowner", Repo: "testrepo", AccessToken: "testtoken"}

	t.Run("image extension corrected by content", func(t *testing.T) {
		savePath := filepath.Join(t.TempDir(), "attachments", "issue_5", "shot.jpg")

		finalPath, err := api.DownloadAttachment(context.Background(), discardLogger(), server.URL+"/attachments/aaa", savePath)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		expectedPath := filepath.Join(filepath.Dir(savePath), "shot.png")
		if finalPath != expectedPath {
			t.Errorf("Expected corrected path %s, got %s", expectedPath, finalPath)
		}

		data, err := os.ReadFile(finalPath)
		if err != nil {
			t.Fatalf("Saved file not readable: %v", err)
		}
		if !bytes.Equal(data, payload) {
			t.Error("Saved file content differs from downloaded payload")
		}
	})

	t.Run("non-image extension is not corrected", func(t *testing.T) {
		savePath := filepath.Join(t.TempDir(), "data.bin")

		finalPath, err := api.DownloadAttachment(context.Background(), discardLogger(), server.URL+"/attachments/bbb", savePath)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if finalPath != savePath {
			t.Errorf("Expected path %s to stay unchanged, got %s", savePath, finalPath)
		}
	})

	t.Run("matching extension kept as is", func(t *testing.T) {
		savePath := filepath.Join(t.TempDir(), "shot.png")

		finalPath, err := api.DownloadAttachment(context.Background(), discardLogger(), server.URL+"/attachments/ccc", savePath)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if finalPath != savePath {
			t.Errorf("Expected path %s to stay unchanged, got %s", savePath, finalPath)
		}
	})
}

// TestDownloadAttachment_ServerError тестирует ошибку скачивания
func TestDownloadAttachment_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	api := &API{GiteaURL: server.URL, AccessToken: "testtoken"}

	savePath := filepath.Join(t.TempDir(), "ghost.png")
	if _, err := api.DownloadAttachment(context.Background(), discardLogger(), server.URL+"/attachments/nope", savePath); err == nil {
		t.Error("Expected error but got none")
	}

	if _, statErr := os.Stat(savePath); !os.IsNotExist(statErr) {
		t.Error("File must not be created when download fails")
	}
}

// TestDownloadAttachment_JpegRenamed тестирует переименование .jpeg в каноничное .jpg
func TestDownloadAttachment_JpegRenamed(t *testing.T) {
	jpegPayload := []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x10}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write(jpegPayload); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer server.Close()

	api := &API{GiteaURL: server.URL, AccessToken: "testtoken"}

	savePath := filepath.Join(t.TempDir(), "photo.jpeg")
	finalPath, err := api.DownloadAttachment(context.Background(), discardLogger(), server.URL+"/attachments/x", savePath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expectedPath := filepath.Join(filepath.Dir(savePath), "photo.jpg")
	if finalPath != expectedPath {
		t.Errorf("Expected canonical path %s, got %s", expectedPath, finalPath)
	}
}
