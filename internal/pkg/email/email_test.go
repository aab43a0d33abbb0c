package email

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func TestStatusTemplates_SubjectPerStatus(t *testing.T) {
	st, err := NewStatusTemplates()
	require.NoError(t, err)

	tests := []struct {
		status  string
		subject string
	}{
		{"approved", "Approved"},
		{"rejected", "Application Update"},
		{"pending", "Under Review"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			subject, body, err := st.Render(tt.status, StatusData{Name: "Asha", Course: "CSE", Sender: "Admissions"})
			require.NoError(t, err)
			assert.Contains(t, subject, tt.subject)
			assert.Contains(t, body, "Dear Asha")
			assert.Contains(t, body, "CSE")
			assert.Contains(t, body, "Admissions")
		})
	}

	_, _, err = st.Render("archived", StatusData{})
	assert.Error(t, err)
}

func TestStatusTemplates_EscapesApplicantData(t *testing.T) {
	st, err := NewStatusTemplates()
	require.NoError(t, err)

	_, body, err := st.Render("pending", StatusData{Name: "<script>x</script>", Course: "CSE"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestStatusNotifier_NotifyStatus(t *testing.T) {
	st, err := NewStatusTemplates()
	require.NoError(t, err)

	sender := &captureSender{}
	n := NewStatusNotifier(sender, st, "Admissions Office")

	msg, err := n.NotifyStatus(context.Background(), "asha@college.edu", "Asha", "CSE", "approved")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "asha@college.edu", sender.sent[0].ToEmail)
	assert.Contains(t, msg.Subject, "Approved")

	sender.err = errors.New("connection refused")
	msg, err = n.NotifyStatus(context.Background(), "asha@college.edu", "Asha", "CSE", "rejected")
	assert.Error(t, err)
	assert.Equal(t, "Application Update", msg.Subject)
}

func TestSendGridSender_Send(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendgridEndpoint, r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender("key", "Admissions", "noreply@college.edu", zerolog.Nop())
	s.host = srv.URL

	err := s.Send(context.Background(), Message{ToEmail: "asha@college.edu", ToName: "Asha", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Contains(t, payload, "personalizations")
}

func TestSendGridSender_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewSendGridSender("bad", "Admissions", "noreply@college.edu", zerolog.Nop())
	s.host = srv.URL

	assert.Error(t, s.Send(context.Background(), Message{ToEmail: "asha@college.edu", Subject: "Hi"}))
}

func TestSMTPSender_DialFailure(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 1}, zerolog.Nop())
	assert.Error(t, s.Send(context.Background(), Message{ToEmail: "asha@college.edu"}))
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{FromName: "Admissions", FromEmail: "noreply@college.edu"}, zerolog.Nop())
	raw, err := s.buildMessage(Message{ToEmail: "asha@college.edu", ToName: "Asha", Subject: "Application Update", HTML: "<p>x</p>"})
	require.NoError(t, err)

	assert.Contains(t, string(raw), "From: \"Admissions\" <noreply@college.edu>\r\n")
	assert.Contains(t, string(raw), "To: \"Asha\" <asha@college.edu>\r\n")
	assert.Contains(t, string(raw), "Subject: Application Update\r\n")
	assert.Contains(t, string(raw), "\r\n\r\n<p>x</p>")
}

func TestSMTPSender_BuildMessage_KeepsHeadersOnOneLine(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{FromName: "Admissions", FromEmail: "noreply@college.edu"}, zerolog.Nop())

	raw, err := s.buildMessage(Message{
		ToEmail: "asha@college.edu",
		ToName:  "Asha\r\nBcc: attacker@evil.com",
		Subject: "Hi\r\nX-Injected: 1",
		HTML:    "<p>x</p>",
	})
	require.NoError(t, err)

	headers := strings.SplitN(string(raw), "\r\n\r\n", 2)[0]
	lines := strings.Split(headers, "\r\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), line)
		assert.False(t, strings.HasPrefix(line, "X-Injected:"), line)
	}
	assert.True(t, strings.HasPrefix(lines[1], "To: =?utf-8?"))
	assert.True(t, strings.HasSuffix(lines[1], " <asha@college.edu>"))

	raw, err = s.buildMessage(Message{ToEmail: "asha@college.edu", ToName: "Āsha Rāo", Subject: "Prāpti", HTML: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "To: =?utf-8?q?")
	assert.Contains(t, string(raw), "Subject: =?utf-8?q?")

	_, err = s.buildMessage(Message{ToEmail: "asha@college.edu\r\nBcc: attacker@evil.com", Subject: "x"})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}
