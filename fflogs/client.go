package fflogs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"text/template"
	"time"

	"ffxiv_cadence/cache"
	"ffxiv_cadence/share"

	"github.com/getsentry/sentry-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const (
	DefaultAPIURL = "https://www.fflogs.com/api/v2/client"

	maxRetries = 3
	retryDelay = 3 * time.Second
)

var (
	strBufPool = sync.Pool{
		New: func() interface{} {
			sb := new(strings.Builder)
			sb.Grow(4 * 1024)
			return sb
		},
	}
	bytBufPool = sync.Pool{
		New: func() interface{} {
			return bytes.NewBuffer(make([]byte, 0, 16*1024))
		},
	}
)

type Options struct {
	ClientID     string
	ClientSecret string

	// APIURL defaults to DefaultAPIURL.
	APIURL string
	// TokenURL defaults to /oauth/token on the APIURL host.
	TokenURL string

	HTTPClient *http.Client

	// Pages caches event pages. nil disables the page cache.
	Pages *cache.Storage
}

type Client struct {
	oauth  *oauthClient
	apiURL string
	http   *http.Client
	pages  *cache.Storage

	retries    int
	retryDelay time.Duration
}

func New(opt Options) (*Client, error) {
	apiURL := opt.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	tokenURL := opt.TokenURL
	if tokenURL == "" {
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, errors.Wrapf(err, "api url %q", apiURL)
		}
		tokenURL = fmt.Sprintf("%s://%s/oauth/token", u.Scheme, u.Host)
	}

	httpClient := opt.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		oauth: &oauthClient{
			tokenURL:     tokenURL,
			clientID:     opt.ClientID,
			clientSecret: opt.ClientSecret,
			http:         httpClient,
		},
		apiURL:     apiURL,
		http:       httpClient,
		pages:      opt.Pages,
		retries:    maxRetries,
		retryDelay: retryDelay,
	}, nil
}

type graphQLError struct {
	Message string `json:"message"`
}

// CallGraphQL renders tmpl and decodes the "data" member of the response into respData.
func (c *Client) CallGraphQL(ctx context.Context, tmpl *template.Template, tmplData interface{}, respData interface{}) error {
	var err error
	for i := 0; i < c.retries; i++ {
		err = c.callGraphQLInner(ctx, tmpl, tmplData, respData)

		if err == nil {
			break
		}
		if share.IsContextClosedError(err) {
			return err
		}
		if i+1 < c.retries {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

func (c *Client) callGraphQLInner(ctx context.Context, tmpl *template.Template, tmplData interface{}, respData interface{}) error {
	sb := strBufPool.Get().(*strings.Builder)
	defer strBufPool.Put(sb)

	sb.Reset()
	err := tmpl.Execute(sb, tmplData)
	if err != nil {
		sentry.CaptureException(err)
		return errors.WithStack(err)
	}

	queryData := struct {
		Query string `json:"query"`
	}{
		Query: sb.String(),
	}

	buf := bytBufPool.Get().(*bytes.Buffer)
	defer bytBufPool.Put(buf)

	buf.Reset()
	err = jsoniter.NewEncoder(buf).Encode(&queryData)
	if err != nil {
		sentry.CaptureException(err)
		return errors.WithStack(err)
	}

	req, err := c.oauth.NewRequest(ctx, "POST", c.apiURL, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if !share.IsContextClosedError(err) {
			sentry.CaptureException(err)
			fmt.Printf("%+v\n", errors.WithStack(err))
		}
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.oauth.Reset()
		return errors.Errorf("graphql: unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return errors.Errorf("graphql: status %d", resp.StatusCode)
	}

	var body struct {
		Data   jsoniter.RawMessage `json:"data"`
		Errors []graphQLError      `json:"errors"`
	}
	err = jsoniter.NewDecoder(resp.Body).Decode(&body)
	if err != nil && err != io.EOF {
		sentry.CaptureException(err)
		return errors.WithStack(err)
	}
	if len(body.Errors) > 0 {
		return errors.Errorf("graphql: %s", body.Errors[0].Message)
	}
	if len(body.Data) == 0 {
		return errors.New("graphql: empty data")
	}

	return errors.WithStack(jsoniter.Unmarshal(body.Data, respData))
}
