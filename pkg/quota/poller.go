package quota

import (
	"context"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/domain"
)

// DefaultLinkTemplate builds record links from the handle and record id
const DefaultLinkTemplate = "https://x.com/{handle}/status/{id}"

// Poller adapts the client to the per-source fetch used by the scheduler
type Poller struct {
	client       *Client
	linkTemplate string
}

// NewPoller makes a poller, empty linkTemplate means DefaultLinkTemplate
func NewPoller(client *Client, linkTemplate string) *Poller {
	if linkTemplate == "" {
		linkTemplate = DefaultLinkTemplate
	}
	return &Poller{client: client, linkTemplate: linkTemplate}
}

// Ready returns domain.ErrNotConfigured without a token and domain.ErrUnauthorized
// while the current token is the one the api rejected
func (p *Poller) Ready(ctx context.Context) error {
	return p.client.Ready(ctx)
}

// Fetch returns timeline records of the source newer than its cursor.
// Sources without a resolved user id are looked up first, the resolved id comes back
// in SourceUpdate. The result may be non-nil together with an error so the caller
// can keep the lookup even if the timeline call failed.
func (p *Poller) Fetch(ctx context.Context, src domain.Source) (*domain.FetchResult, error) {
	res := &domain.FetchResult{}
	userID := src.PlatformUserID
	name := src.DisplayName

	if userID == "" {
		info, err := p.client.LookupUser(ctx, src.Handle)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] resolved %s to user %s (%s)", src.Handle, info.ID, info.Name)
		userID, name = info.ID, info.Name
		res.SourceUpdate = &domain.SourceUpdate{PlatformUserID: info.ID, DisplayName: info.Name}
	}

	tl, err := p.client.FetchTimeline(ctx, userID, src.Cursor)
	if err != nil {
		return res, err
	}
	records := tl.Records

	author := name
	if author == "" {
		author = src.Handle
	}
	for i := range records {
		if records[i].Author == "" {
			records[i].Author = author
		}
		records[i].Link = p.link(src.Handle, records[i].ExternalID)
	}
	res.Records, res.NewestID, res.Skipped = records, tl.NewestID, tl.Dropped
	return res, nil
}

func (p *Poller) link(handle, id string) string {
	return strings.NewReplacer("{handle}", handle, "{id}", id).Replace(p.linkTemplate)
}
