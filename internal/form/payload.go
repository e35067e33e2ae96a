package form

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Mode selects how a payload is encoded and sent.
type Mode int

const (
	// ModeQuery sends every declared field as a URL query on a GET.
	ModeQuery Mode = iota
	// ModeMultipart sends present fields as a multipart POST body.
	ModeMultipart
)

func (m Mode) String() string {
	if m == ModeMultipart {
		return "multipart"
	}
	return "query"
}

// Method is the HTTP method paired with the mode.
func (m Mode) Method() string {
	if m == ModeMultipart {
		return http.MethodPost
	}
	return http.MethodGet
}

const (
	TimestampKey = "timestamp"
	NonceKey     = "_ts"
	// TimestampLayout renders DD/MM/YYYY HH:MM:SS.
	TimestampLayout = "02/01/2006 15:04:05"
)

// Entry is one encoded key/value. File is set for attachments.
type Entry struct {
	Key   string
	Value string
	File  *File
}

// Payload is the canonical request content for one submission. The last two
// entries are always timestamp and nonce.
type Payload struct {
	ID      string
	Mode    Mode
	Entries []Entry
	Nonce   int64
}

// BuildPayload encodes fields in schema order and appends the timestamp and
// nonce derived from at. In query mode every declared field is present, with
// "" for missing values; in multipart mode empty values are left out. at is
// formatted in its own location, so callers pass local time.
func BuildPayload(fields Fields, schema Schema, mode Mode, at time.Time) *Payload {
	p := &Payload{Mode: mode, Nonce: at.UnixMilli()}
	for _, fs := range schema {
		v := fields[fs.Name]
		switch mode {
		case ModeMultipart:
			if v.File != nil {
				p.Entries = append(p.Entries, Entry{Key: fs.Name, File: v.File})
			} else if v.Text != "" {
				p.Entries = append(p.Entries, Entry{Key: fs.Name, Value: v.Text})
			}
		default:
			p.Entries = append(p.Entries, Entry{Key: fs.Name, Value: v.Text})
		}
	}
	p.Entries = append(p.Entries,
		Entry{Key: TimestampKey, Value: at.Format(TimestampLayout)},
		Entry{Key: NonceKey, Value: strconv.FormatInt(p.Nonce, 10)},
	)
	return p
}

// Timestamp returns the formatted timestamp entry.
func (p *Payload) Timestamp() string {
	for _, e := range p.Entries {
		if e.Key == TimestampKey {
			return e.Value
		}
	}
	return ""
}

// Query renders the entries as an ordered application/x-www-form-urlencoded
// string.
func (p *Payload) Query() string {
	var b strings.Builder
	for i, e := range p.Entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(e.Value))
	}
	return b.String()
}

// WriteMultipart writes the entries as a multipart/form-data body and returns
// the content type including the boundary.
func (p *Payload) WriteMultipart(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)
	for _, e := range p.Entries {
		if e.File == nil {
			if err := mw.WriteField(e.Key, e.Value); err != nil {
				return "", fmt.Errorf("write field %s: %w", e.Key, err)
			}
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(e.Key), quoteEscaper.Replace(e.File.Name)))
		ct := e.File.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("create part %s: %w", e.Key, err)
		}
		if _, err := part.Write(e.File.Data); err != nil {
			return "", fmt.Errorf("write part %s: %w", e.Key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}
	return mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
