package emailalert

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/emersion/go-imap/v2"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/urlutil"
)

// PasswordFunc resolves the IMAP password at run time, so the keychain is
// only touched when email ingestion actually runs.
type PasswordFunc func() (string, error)

type Source struct {
	cfg      config.Config
	password PasswordFunc
}

func NewSource(cfg config.Config, password PasswordFunc) *Source {
	return &Source{cfg: cfg, password: password}
}

// CandidateURLs reads unseen alert messages and returns the posting links
// found in their bodies. Processed messages are marked seen so they are
// consumed exactly once.
func (s *Source) CandidateURLs(ctx context.Context) ([]string, error) {
	em := s.cfg.Email
	if !em.Enabled {
		return nil, nil
	}

	pw, err := s.password()
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", em.IMAPHost, em.IMAPPort)
	c, err := dialAndLogin(ctx, addr, em.Username, pw)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	msgs, err := fetchUnseen(ctx, c, em.Mailbox, em.MaxMessages)
	if err != nil {
		return nil, err
	}

	seenURL := map[string]bool{}
	var urls []string
	var processed []imap.UID
	for _, m := range msgs {
		if !subjectMatches(em.SearchSubjectAny, m.Subject) {
			continue
		}
		processed = append(processed, m.UID)
		for _, u := range extractLinks(m.Raw) {
			cu := urlutil.Canonicalize(u)
			if cu == "" || seenURL[cu] {
				continue
			}
			seenURL[cu] = true
			urls = append(urls, cu)
		}
	}

	if err := markSeen(c, processed); err != nil {
		log.Printf("[emailalert] mark seen failed: %v", err)
	}
	log.Printf("[emailalert] messages=%d matched=%d urls=%d", len(msgs), len(processed), len(urls))
	return urls, nil
}

// subjectMatches requires one of the configured needles; an empty list
// matches every subject.
func subjectMatches(needles []string, subject string) bool {
	if len(needles) == 0 {
		return true
	}
	subj := strings.ToLower(subject)
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(subj, n) {
			return true
		}
	}
	return false
}
