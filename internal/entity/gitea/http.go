package gitea

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
)

// httpClient создаёт HTTP клиент с учётом настройки проверки TLS сертификата.
// VerifySSL=false отключает проверку для серверов с самоподписанными сертификатами.
func (g *API) httpClient() *http.Client {
	if g.VerifySSL {
		return &http.Client{}
	}
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // verify_ssl=false — штатный режим для внутренних серверов
		},
	}
}

// isSuccessStatus сообщает, попадает ли статус в диапазон 2xx.
func isSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

func (g *API) sendReq(ctx context.Context, urlString, reqBody, method string) (int, string, error) {
	var req *http.Request
	var err error
	if reqBody == "" {
		req, err = http.NewRequestWithContext(ctx, method, urlString, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, urlString, bytes.NewBufferString(reqBody))
	}
	if err != nil {
		return -1, "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.AccessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return -1, "", err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Failed to close response body: %v", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, "", err
	}

	return resp.StatusCode, string(bodyBytes), nil
}

// downloadBytes скачивает содержимое по произвольному URL с токен-аутентификацией.
// Токен добавляется и как query параметр token, и в заголовок Authorization:
// разные версии Gitea проверяют разные механизмы для attachment URL.
func (g *API) downloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("невалидный URL вложения: %w", err)
	}
	q := u.Query()
	q.Set("token", g.AccessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.AccessToken))

	resp, err := g.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при скачивании: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка при скачивании: статус %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
