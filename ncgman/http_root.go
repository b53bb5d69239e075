package ncgman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const ROUTE_SET_PRIVATE_KEY = "/set-private-key"

type setPrivateKeyRequest struct {
	PrivateKeyString string
}

// SetPrivateKey hands the bridge NCG key to the headless node so it can sign transfers.
func (h *Headless) SetPrivateKey(ctx context.Context, privateKey string) error {
	if h.httpRoot == "" {
		return fmt.Errorf("%w: empty http root endpoint", ErrInvalidEndpoint)
	}

	body, err := json.Marshal(&setPrivateKeyRequest{PrivateKeyString: privateKey})
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(h.httpRoot, "/") + ROUTE_SET_PRIVATE_KEY
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status=%d, body=%s", ErrSetPrivateKey, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
