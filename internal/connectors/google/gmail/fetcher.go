// Package gmail fetches labelled newsletters from the Gmail API.
//
// One run makes one message-list call (paginated) plus one get call per
// message, all behind a shared rate limiter. HTML to text conversion is
// local and costs no API calls.
package gmail

import (
	"context"
	"fmt"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/connectors/google"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves one day's newsletters from a Gmail label.
type Fetcher struct {
	service *gmailapi.Service
	limiter *google.RateLimiter
	cfg     Config
}

// NewFetcher creates a Gmail fetcher from cached OAuth credentials.
func NewFetcher(ctx context.Context, cfg Config) (*Fetcher, error) {
	cfg = cfg.withDefaults()

	oauthCfg, err := google.LoadOAuthConfig(cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	tokenSource, err := google.NewTokenSource(ctx, oauthCfg, cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	service, err := gmailapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("create Gmail service: %w", err)
	}

	return &Fetcher{
		service: service,
		limiter: google.NewRateLimiter(),
		cfg:     cfg,
	}, nil
}

// Fetch returns the day's newsletters, deduplicated by subject.
// The day is interpreted in its own location, midnight to midnight.
func (f *Fetcher) Fetch(ctx context.Context, day time.Time) ([]domain.Newsletter, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	query := fmt.Sprintf("label:%s after:%d before:%d", f.cfg.Label, start.Unix(), end.Unix())
	logger.Debug("gmail query: %s", query)

	ids, err := f.listMessageIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", google.WrapError(err))
	}
	if len(ids) == 0 {
		return nil, nil
	}
	logger.Info("found %d newsletters, fetching bodies", len(ids))

	newsletters := make([]domain.Newsletter, 0, len(ids))
	for _, id := range ids {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		msg, err := f.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			if google.IsRateLimited(err) {
				f.limiter.RecordRateLimitError(0)
			}
			logger.Warn("fetching message %s failed, skipping: %v", id, google.WrapError(err))
			continue
		}

		doc, ok := MessageToNewsletter(msg, f.cfg.MinBodyChars, f.cfg.BodyCap)
		if !ok {
			logger.Debug("skipping empty or tiny message %s", id)
			continue
		}
		newsletters = append(newsletters, doc)
	}

	unique := DedupBySubject(newsletters)
	logger.Info("fetched %d newsletters (%d after dedup)", len(newsletters), len(unique))
	return unique, nil
}

// listMessageIDs pages through the message list up to the configured cap.
func (f *Fetcher) listMessageIDs(ctx context.Context, query string) ([]string, error) {
	var (
		ids       []string
		pageToken string
	)
	for {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := f.service.Users.Messages.List("me").
			Q(query).
			MaxResults(int64(f.cfg.MaxNewsletters)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		result, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, msg := range result.Messages {
			ids = append(ids, msg.Id)
		}

		pageToken = result.NextPageToken
		if pageToken == "" || len(ids) >= f.cfg.MaxNewsletters {
			break
		}
	}

	if len(ids) > f.cfg.MaxNewsletters {
		ids = ids[:f.cfg.MaxNewsletters]
	}
	return ids, nil
}

// Close releases resources.
func (f *Fetcher) Close() error {
	// The underlying HTTP client needs no explicit cleanup
	return nil
}
