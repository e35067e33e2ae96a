package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/FormDrop/internal/form"
	"github.com/dharsanguruparan/FormDrop/internal/signing"
)

var pdfBytes = []byte("%PDF-1.4\n%%EOF\n")

type captured struct {
	mu      sync.Mutex
	method  string
	rawURL  string
	query   map[string][]string
	form    map[string][]string
	file    []byte
	headers http.Header
}

func newHook(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.method = r.Method
		c.rawURL = r.URL.RawQuery
		c.query = r.URL.Query()
		c.headers = r.Header.Clone()
		if r.Method == http.MethodPost {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				c.form = r.MultipartForm.Value
				if fhs := r.MultipartForm.File["cv"]; len(fhs) == 1 {
					f, _ := fhs[0].Open()
					c.file, _ = io.ReadAll(f)
					f.Close()
				}
			}
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func queryPayload() *form.Payload {
	def := form.ContactForm()
	p := form.BuildPayload(form.Fields{
		"full_name": form.Text("Jo"),
		"message":   form.Text("hello there"),
	}, def.Schema, def.Mode, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	p.ID = "sub-1"
	return p
}

func TestSubmitQueryUsesGET(t *testing.T) {
	srv, got := newHook(t, http.StatusOK)
	client := New(srv.Client(), map[string]string{"ngrok-skip-browser-warning": "1"}, nil, nil)

	err := client.Submit(context.Background(), queryPayload(), srv.URL+"/webhook/React-Contact-Form")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "Jo", got.query["full_name"][0])
	assert.Equal(t, []string{""}, got.query["email_address"])
	assert.Equal(t, "02/01/2024 03:04:05", got.query["timestamp"][0])
	assert.NotEmpty(t, got.query["_ts"][0])
	assert.Equal(t, "1", got.headers.Get("ngrok-skip-browser-warning"))
	assert.Equal(t, "sub-1", got.headers.Get(HeaderSubmission))
	assert.Empty(t, got.headers.Get(HeaderSignature))
	assert.Regexp(t, `timestamp=[^&]+&_ts=\d+$`, got.rawURL)
}

func TestSubmitMultipartUsesPOST(t *testing.T) {
	srv, got := newHook(t, http.StatusCreated)
	client := New(srv.Client(), nil, signing.NewSigner([]byte("k")), nil)

	def := form.JobApplicationForm(nil)
	p := form.BuildPayload(form.Fields{
		"full_name": form.Text("Jo"),
		"cv":        form.Attach(&form.File{Name: "cv.pdf", ContentType: "application/pdf", Data: pdfBytes}),
	}, def.Schema, def.Mode, time.Now())
	p.ID = "sub-2"

	require.NoError(t, client.Submit(context.Background(), p, srv.URL))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, []string{"Jo"}, got.form["full_name"])
	assert.NotContains(t, got.form, "email_address")
	assert.Len(t, got.form["timestamp"], 1)
	assert.Len(t, got.form["_ts"], 1)
	assert.Equal(t, pdfBytes, got.file)

	sig := got.headers.Get(HeaderSignature)
	assert.True(t, signing.NewSigner([]byte("k")).Validate("sub-2", got.form["_ts"][0], sig))
}

func TestSubmitNon2xxIsStatusError(t *testing.T) {
	srv, _ := newHook(t, http.StatusInternalServerError)
	client := New(srv.Client(), nil, nil, nil)

	err := client.Submit(context.Background(), queryPayload(), srv.URL)
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.Code)
	assert.Contains(t, err.Error(), "500")
}

func TestSubmitTransportError(t *testing.T) {
	srv, _ := newHook(t, http.StatusOK)
	url := srv.URL
	srv.Close()

	err := New(nil, nil, nil, nil).Submit(context.Background(), queryPayload(), url)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.NotEmpty(t, te.Error())
}

func TestSubmitMalformedEndpoint(t *testing.T) {
	err := New(nil, nil, nil, nil).Submit(context.Background(), queryPayload(), "http://bad host/%zz")
	var te *TransportError
	assert.True(t, errors.As(err, &te))
}

func TestControllerOverHTTP500(t *testing.T) {
	srv, _ := newHook(t, http.StatusInternalServerError)
	var notes []form.Notification
	events := eventsFunc(func(n form.Notification) { notes = append(notes, n) })

	c := form.NewController(form.ContactForm(), srv.URL, New(srv.Client(), nil, nil, nil), events)
	c.Set("full_name", form.Text("Jo"))
	c.Set("message", form.Text("hello!"))

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, form.Failed, out.State)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "500")
	assert.Equal(t, form.Text("Jo"), c.Fields()["full_name"])
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "http://h/p?a=1", withQuery("http://h/p", "a=1"))
	assert.Equal(t, "http://h/p?x=2&a=1", withQuery("http://h/p?x=2", "a=1"))
	assert.Equal(t, "http://h/p?a=1", withQuery("http://h/p?", "a=1"))
	assert.Equal(t, "http://h/p", withQuery("http://h/p", ""))
}

type eventsFunc func(form.Notification)

func (f eventsFunc) Notify(n form.Notification) { f(n) }
func (f eventsFunc) ReturnHome()                {}
