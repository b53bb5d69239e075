// Reader is a client facility to read the output of a http reporter.

package reporter

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type HttpReader struct {
	serverIP   string // listen ip
	serverPort string // listen port
	client     *http.Client
}

func NewHttpReader(serverIP string, serverPort string) *HttpReader {
	return &HttpReader{
		serverIP:   serverIP,
		serverPort: serverPort,
		client:     http.DefaultClient,
	}
}

func (hr *HttpReader) base() string {
	return "http://" + hr.serverIP + ":" + hr.serverPort
}

func (hr *HttpReader) GetHello() (string, error) {
	body, _, err := hr.get(hr.base() + ROUTE_HELLO)
	return body, err
}

func (hr *HttpReader) GetStatus() (string, error) {
	body, _, err := hr.get(hr.base() + ROUTE_STATUS)
	return body, err
}

// GetSettlement returns the body and the http status code.
func (hr *HttpReader) GetSettlement(source, ref string) (string, int, error) {
	q := url.Values{}
	q.Set("source", source)
	q.Set("ref", ref)
	return hr.get(hr.base() + ROUTE_SETTLEMENT + "?" + q.Encode())
}

func (hr *HttpReader) get(url string) (string, int, error) {
	resp, err := hr.client.Get(url)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read %s: %w", url, err)
	}

	return string(body), resp.StatusCode, nil
}
