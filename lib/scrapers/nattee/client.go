package nattee

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	"natteescraper/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/nattee")

const DefaultBaseUrl = "https://cedt-grader.nattee.net"

const (
	loginPath      = "/login/login"
	testcasesPath  = "/testcases/show_problem/%s"
	hallOfFamePath = "/report/problem_hof/%s"
	submissionPath = "/submissions/%s"
)

// Client is an authenticated session against the grader. Exactly one
// goroutine may use a Client at a time; workers get their own copy via
// Clone before resolving their slice.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/nattee/http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}, nil
}

// Login scrapes the authenticity token off the landing page's login
// form and echoes it back in the login POST.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse landing page html")
		return err
	}

	token := doc.Find("input[name=authenticity_token]").AttrOr("value", "")
	if token == "" {
		span.SetStatus(codes.Error, "failed to find authenticity token")
		return fmt.Errorf("%w: authenticity token not found", LoginFailed)
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"utf8":               "✓",
			"authenticity_token": token,
			"login":              username,
			"password":           password,
			"commit":             "login",
		}).
		Post(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, LoginFailed.Error())
		return fmt.Errorf("%w: status %d", LoginFailed, res.StatusCode())
	}

	return nil
}

// Clone creates an independent session carrying the same cookie and
// header snapshot as this one. The copy owns its own connection state,
// so handing it to another worker never shares a live session object.
func (c *Client) Clone() (*Client, error) {
	client := resty.New()
	client.SetBaseURL(c.Http.BaseURL)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	jar.SetCookies(c.BaseUrl, c.Http.GetClient().Jar.Cookies(c.BaseUrl))
	client.SetCookieJar(jar)

	client.Header = c.Http.Header.Clone()
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(c.BaseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/nattee/http")

	return &Client{
		BaseUrl: c.BaseUrl,
		Http:    client,
	}, nil
}
