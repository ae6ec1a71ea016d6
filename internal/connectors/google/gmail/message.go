package gmail

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	htmlnorm "github.com/Aryankumar29/Newsletter-Digest-Agent/internal/normalisers/html"
)

// MessageToNewsletter converts a fully-hydrated Gmail message into a
// newsletter document. Returns false when the message carries no usable
// body (tracking-only mails, empty footers).
func MessageToNewsletter(msg *gmailapi.Message, minBodyChars, bodyCap int) (domain.Newsletter, bool) {
	if msg == nil || msg.Payload == nil {
		return domain.Newsletter{}, false
	}

	body := extractBody(msg.Payload)
	if len(strings.TrimSpace(body)) < minBodyChars {
		return domain.Newsletter{}, false
	}
	if len(body) > bodyCap {
		body = body[:bodyCap]
	}

	sender := header(msg.Payload.Headers, "From")
	return domain.Newsletter{
		SourceName:  senderName(sender),
		Subject:     header(msg.Payload.Headers, "Subject"),
		Body:        body,
		RetrievedAt: headerDate(msg.Payload.Headers),
		MessageID:   msg.Id,
		Link:        fmt.Sprintf("https://mail.google.com/mail/u/0/#all/%s", msg.Id),
	}, true
}

// extractBody recursively extracts text from the message payload,
// preferring HTML (converted locally) over plain text.
func extractBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	// Direct body
	if data := decodeBody(payload.Body); data != "" {
		switch payload.MimeType {
		case "text/html":
			return htmlnorm.ToText(data)
		case "text/plain":
			return data
		}
	}

	// Multipart: prefer HTML over plain text
	var htmlBody, plainBody string
	for _, part := range payload.Parts {
		data := decodeBody(part.Body)
		switch {
		case part.MimeType == "text/html" && data != "":
			htmlBody = htmlnorm.ToText(data)
		case part.MimeType == "text/plain" && data != "":
			plainBody = data
		case strings.HasPrefix(part.MimeType, "multipart/"):
			if nested := extractBody(part); nested != "" && htmlBody == "" {
				htmlBody = nested
			}
		}
	}

	if htmlBody != "" {
		return htmlBody
	}
	return plainBody
}

// decodeBody decodes a base64url message part body. Gmail uses unpadded
// base64url; some senders pad anyway, so both are tried.
func decodeBody(body *gmailapi.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	data, err := base64.RawURLEncoding.DecodeString(body.Data)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

// header extracts a header value by name, case-insensitively.
func header(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// headerDate parses the Date header; the zero time means unparseable.
func headerDate(headers []*gmailapi.MessagePartHeader) time.Time {
	value := header(headers, "Date")
	if value == "" {
		return time.Time{}
	}
	t, err := mail.ParseDate(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// senderName reduces a From header to a display name. "Alpha Weekly
// <news@alpha.com>" becomes "Alpha Weekly"; a bare address stays as is.
func senderName(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return strings.TrimSpace(from)
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

// DedupBySubject drops later messages that repeat an earlier subject,
// case-insensitively. Some senders double-send the same issue.
func DedupBySubject(docs []domain.Newsletter) []domain.Newsletter {
	seen := make(map[string]struct{}, len(docs))
	unique := make([]domain.Newsletter, 0, len(docs))
	for _, doc := range docs {
		key := strings.ToLower(strings.TrimSpace(doc.Subject))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, doc)
	}
	return unique
}
