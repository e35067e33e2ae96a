package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/FormDrop/internal/form"
)

func TestParseView(t *testing.T) {
	cases := map[string]View{
		"home":            ViewHome,
		"contact":         ViewHome,
		"job-application": ViewJobApplication,
		"job-posting":     ViewJobPosting,
	}
	for in, want := range cases {
		got, err := ParseView(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseView("/careers")
	assert.Error(t, err)
}

func TestViewFormTypeRoundTrip(t *testing.T) {
	for _, typ := range form.Types {
		assert.Equal(t, typ, ViewFor(typ).FormType())
	}
	assert.Equal(t, "job-posting", ViewJobPosting.String())
	assert.Equal(t, "view(9)", View(9).String())
}

func TestShellRecordsAndReturnsHome(t *testing.T) {
	var forwarded []form.Notification
	s := New(ViewJobPosting, func(n form.Notification) { forwarded = append(forwarded, n) })

	n := form.Notification{Level: form.LevelSuccess, Message: "ok"}
	s.Notify(n)
	s.ReturnHome()

	assert.Equal(t, ViewHome, s.View())
	assert.Equal(t, []form.Notification{n}, s.Notifications())
	assert.Equal(t, []form.Notification{n}, forwarded)
}

type okSubmitter struct{}

func (okSubmitter) Submit(context.Context, *form.Payload, string) error { return nil }

func TestShellDrivenByController(t *testing.T) {
	s := New(ViewJobPosting, nil)
	c := form.NewController(form.JobPostingForm(), "http://hook", okSubmitter{}, s)
	c.Set("company_name", form.Text("Acme"))
	c.Set("company_description", form.Text("We build rockets."))
	c.Set("notification_email", form.Text("hr@acme.com"))
	c.Set("job_title", form.Text("Welder"))
	c.Set("job_requirements", form.Text("Steady hands"))

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, form.Succeeded, out.State)
	assert.Equal(t, ViewHome, s.View())
	assert.Len(t, s.Notifications(), 1)
}
