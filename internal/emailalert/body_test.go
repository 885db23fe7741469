package emailalert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinksMultipartHTML(t *testing.T) {
	raw := []byte("From: alerts@jobs.example\r\n" +
		"To: me@example.com\r\n" +
		"Subject: 5 new jobs for you\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"BOUND\"\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"New openings: https://jobs.example/view/42.\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"<html><body>\r\n" +
		"<a href=3D\"https://jobs.example/view/42?utm=3Dalert\">Backend Engineer</a>\r\n" +
		"<a href=3D\"https://jobs.example/view/99\">Data Engineer</a>\r\n" +
		"<a href=3D\"https://jobs.example/unsubscribe?u=3D1\">Unsubscribe</a>\r\n" +
		"<a href=3D\"mailto:alerts@jobs.example\">Contact</a>\r\n" +
		"</body></html>\r\n" +
		"--BOUND--\r\n")

	links := extractLinks(raw)

	assert.Contains(t, links, "https://jobs.example/view/42?utm=alert")
	assert.Contains(t, links, "https://jobs.example/view/99")
	// the text/plain fallback URL with its trailing dot stripped
	assert.Contains(t, links, "https://jobs.example/view/42")
	for _, l := range links {
		assert.NotContains(t, l, "unsubscribe")
		assert.NotContains(t, l, "mailto:")
	}
}

func TestExtractLinksPlainTextOnly(t *testing.T) {
	raw := []byte("From: alerts@jobs.example\r\n" +
		"Subject: job alert\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Check out https://acme.example/careers/backend-engineer,\r\n" +
		"and manage settings at https://jobs.example/preferences\r\n")

	links := extractLinks(raw)
	assert.Equal(t, []string{"https://acme.example/careers/backend-engineer"}, links)
}

func TestExtractLinksBase64HTML(t *testing.T) {
	// "<a href="https://jobs.example/view/7">Role</a>" base64-encoded
	raw := []byte("From: alerts@jobs.example\r\n" +
		"Subject: job alert\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"PGEgaHJlZj0iaHR0cHM6Ly9qb2JzLmV4YW1wbGUvdmlldy83Ij5Sb2xlPC9hPg==\r\n")

	links := extractLinks(raw)
	assert.Equal(t, []string{"https://jobs.example/view/7"}, links)
}

func TestExtractLinksEmptyAndGarbage(t *testing.T) {
	assert.Empty(t, extractLinks(nil))
	assert.Empty(t, extractLinks([]byte("not an email at all")))
}

func TestKeepLink(t *testing.T) {
	assert.True(t, keepLink("https://jobs.example/view/1"))
	assert.False(t, keepLink("ftp://jobs.example/file"))
	assert.False(t, keepLink("https://jobs.example/Unsubscribe"))
	assert.False(t, keepLink("https://help.jobs.example/faq"))
	assert.False(t, keepLink("https://jobs.example/email-settings"))
}

func TestSubjectMatches(t *testing.T) {
	needles := []string{"job alert", "new jobs"}
	assert.True(t, subjectMatches(needles, "Your Job Alert: 5 new roles"))
	assert.True(t, subjectMatches(needles, "12 New Jobs for you"))
	assert.False(t, subjectMatches(needles, "Your invoice"))
	assert.True(t, subjectMatches(nil, "anything"), "empty needle list matches everything")
}
