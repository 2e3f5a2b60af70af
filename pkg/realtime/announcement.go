package realtime

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

// AnnouncementHubName is the hub store managers broadcast new albums on.
const AnnouncementHubName = "announcement"

// Announcement is the payload of the "announcement" method.
type Announcement struct {
	Title string `json:"Title"`
	URL   string `json:"Url"`
}

// Announcer broadcasts new albums to every connected browser.
type Announcer struct {
	hub    *Hub
	policy *bluemonday.Policy
}

// NewAnnouncer registers the announcement hub on s.
func NewAnnouncer(s *Server) *Announcer {
	return &Announcer{
		hub:    s.Hub(AnnouncementHubName),
		policy: bluemonday.StrictPolicy(),
	}
}

// Hub returns the announcement hub.
func (a *Announcer) Hub() *Hub { return a.hub }

// Announce tells every client about album. Markup in the title is stripped.
func (a *Announcer) Announce(album store.Album) error {
	return a.hub.Clients().All().Send("announcement", Announcement{
		Title: a.policy.Sanitize(album.Title),
		URL:   fmt.Sprintf("/Store/Details/%d", album.ID),
	})
}
