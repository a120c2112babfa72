package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// PadTransformation builds the variant spec for one output size: fit inside
// the box preserving aspect ratio, pad with a white background, normalize
// to JPEG. Applied uniformly to every requested size.
func PadTransformation(width, height, quality int) string {
	return fmt.Sprintf("c_pad,w_%d,h_%d,b_white,q_%d,f_jpg", width, height, quality)
}

// Upload sends one file to the remote service together with the eager
// transformations for every requested output size.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	if req.PublicID != "" {
		params["public_id"] = req.PublicID
	}
	if len(req.Transformations) > 0 {
		params["eager"] = strings.Join(req.Transformations, "|")
	}
	params["signature"] = c.sign(params)
	params["api_key"] = c.apiKey

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to encode upload form: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", req.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload form: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("failed to encode upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode upload form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.apiBase, c.cloudName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.uploadError(resp.StatusCode, respBody)
	}

	var result UploadResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

// uploadError maps a non-200 upload response to an error. Status 420 is the
// remote service's rate/usage ceiling signal.
func (c *Client) uploadError(status int, body []byte) error {
	message := fmt.Sprintf("status %d", status)
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	if status == 420 || status == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", message, ErrQuotaExceeded)
	}
	return fmt.Errorf("upload rejected: %s", message)
}

// sign computes the request signature: parameters sorted by name, joined
// with '&', with the API secret appended, hashed with SHA-1.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	payload := strings.Join(pairs, "&") + c.apiSecret
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}
