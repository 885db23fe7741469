package emailalert

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxBodyBytes = 6 << 20

var nakedURLRe = regexp.MustCompile(`https?://[^\s<>"']+`)

// skipLinkFragments mark housekeeping links alert emails always carry.
var skipLinkFragments = []string{
	"unsubscribe", "preferences", "privacy", "terms",
	"mailto:", "email-settings", "manage-alerts", "help.",
}

// extractLinks parses one raw RFC822 message and returns the http(s)
// links from its body, HTML anchors first, naked text URLs as fallback.
func extractLinks(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	plain, htmlBody := textParts(raw)

	var out []string
	if htmlBody != "" {
		out = append(out, anchorLinks(htmlBody)...)
	}
	for _, u := range nakedURLRe.FindAllString(plain, -1) {
		out = append(out, strings.TrimRight(u, ".,);:]\"'"))
	}

	kept := out[:0]
	for _, u := range out {
		if keepLink(u) {
			kept = append(kept, u)
		}
	}
	return kept
}

func anchorLinks(htmlBody string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			out = append(out, strings.TrimSpace(href))
		}
	})
	return out
}

func keepLink(u string) bool {
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return false
	}
	lu := strings.ToLower(u)
	for _, frag := range skipLinkFragments {
		if strings.Contains(lu, frag) {
			return false
		}
	}
	return true
}

// textParts splits a message into its plain and HTML bodies, walking
// multipart containers and undoing transfer encodings.
func textParts(raw []byte) (plain, htmlBody string) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return string(raw), ""
	}
	body, _ := io.ReadAll(io.LimitReader(msg.Body, maxBodyBytes))
	return partText(mimeHeader(msg.Header), body)
}

type mimeHeader mail.Header

func (h mimeHeader) get(key string) string { return mail.Header(h).Get(key) }

func partText(h mimeHeader, body []byte) (plain, htmlBody string) {
	ct := h.get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return string(decodeTransfer(body, cte)), ""
	}
	mediaType = strings.ToLower(mediaType)

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" {
			return string(decodeTransfer(body, cte)), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			pb, _ := io.ReadAll(io.LimitReader(p, maxBodyBytes))
			sub := mimeHeaderFromMIME(p.Header)
			sp, sh := partText(sub, pb)
			if plain == "" {
				plain = sp
			}
			if htmlBody == "" {
				htmlBody = sh
			}
		}
		return plain, htmlBody
	case mediaType == "text/html":
		return "", string(decodeTransfer(body, cte))
	default:
		return string(decodeTransfer(body, cte)), ""
	}
}

func mimeHeaderFromMIME(h map[string][]string) mimeHeader {
	return mimeHeader(h)
}

func decodeTransfer(body []byte, cte string) []byte {
	switch cte {
	case "quoted-printable":
		out, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(body)))
		if err == nil {
			return out
		}
	case "base64":
		out, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, bytes.NewReader(bytes.ReplaceAll(body, []byte("\n"), nil))))
		if err == nil {
			return out
		}
	}
	return body
}
