package databricks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bricklake/bricksync/helper"
	"github.com/bricklake/bricksync/logger"
	"github.com/pkg/errors"
)

// ClientConfig holds everything needed to talk to a Databricks workspace.
type ClientConfig struct {
	Host     string `errorTxt:"Databricks host" mandatory:"yes"`
	Token    string `errorTxt:"Databricks access token" mandatory:"yes"`
	HttpPath string `errorTxt:"Databricks warehouse HTTP path" mandatory:"yes"`
}

// Client issues calls against the Databricks control-plane REST APIs and the
// SQL statement execution API. Each call is independent; no connection state
// is kept between calls.
type Client struct {
	cfg        ClientConfig
	log        logger.Logger
	httpClient *http.Client
	sleep      func(time.Duration) // injectable for tests.
}

// ApiError carries the HTTP status and body text of a failed Databricks call.
type ApiError struct {
	StatusCode int
	Status     string
	Body       string
	Op         string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%v failed: %v - %v", e.Op, e.Status, e.Body)
}

func NewClient(log logger.Logger, cfg ClientConfig) (*Client, error) {
	if err := helper.ValidateStructIsPopulated(&cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		sleep:      time.Sleep,
	}, nil
}

// baseUrl normalises the configured host into a fully qualified URL:
// a missing scheme becomes https and any trailing slash is removed.
func (c *Client) baseUrl() string {
	host := strings.TrimRight(c.cfg.Host, "/")
	if !strings.HasPrefix(host, "http") {
		return "https://" + host
	}
	return host
}

// warehouseId extracts the warehouse identifier from the configured HTTP path,
// which is expected to end with it e.g. /sql/1.0/warehouses/abc123.
func (c *Client) warehouseId() string {
	p := strings.TrimRight(c.cfg.HttpPath, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return p
	}
	return p[i+1:]
}

func (c *Client) do(op, method, apiPath string, query url.Values, body interface{}, out interface{}) error {
	u := c.baseUrl() + apiPath
	if len(query) > 0 {
		u = u + "?" + query.Encode()
	}
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "unable to marshal request for %v", op)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, u, reqBody)
	if err != nil {
		return errors.Wrapf(err, "unable to build request for %v", op)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%v request failed", op)
	}
	defer resp.Body.Close()
	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "unable to read %v response", op)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 { // if Databricks rejected the call...
		return &ApiError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
			Op:         op,
		}
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrapf(err, "unable to decode %v response", op)
		}
	}
	return nil
}

func (c *Client) get(op, apiPath string, query url.Values, out interface{}) error {
	return c.do(op, http.MethodGet, apiPath, query, nil, out)
}

func (c *Client) post(op, apiPath string, body interface{}, out interface{}) error {
	return c.do(op, http.MethodPost, apiPath, nil, body, out)
}
