// Package notify turns trip events into emails and delivers them.
// Composer renders messages; Dispatcher fans them out to the mail gateway.
package notify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/pkordes/planner/backend/internal/domain"
	"github.com/pkordes/planner/backend/internal/mail"
)

// Composer renders trip emails in one language, with links rooted at the
// public API base URL.
type Composer struct {
	baseURL string
	lang    language.Tag
	locale  string // "pt" or "en"; selects the template set
}

// NewComposer returns a Composer. Languages other than Portuguese render in English.
func NewComposer(baseURL string, lang language.Tag) *Composer {
	locale := "en"
	if base, _ := lang.Base(); base.String() == "pt" {
		locale = "pt"
	}
	return &Composer{
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		locale:  locale,
	}
}

// ParticipantConfirmURL is the link a participant follows to confirm attendance.
func (c *Composer) ParticipantConfirmURL(participantID uuid.UUID) string {
	return fmt.Sprintf("%s/participants/%s/confirm", c.baseURL, participantID)
}

// TripConfirmURL is the link the owner follows to confirm a new trip.
func (c *Composer) TripConfirmURL(tripID uuid.UUID) string {
	return fmt.Sprintf("%s/trips/%s/confirm", c.baseURL, tripID)
}

// emailData is the view model shared by every template.
type emailData struct {
	Name        string
	Destination string
	StartsAt    string
	EndsAt      string
	Link        string
}

// TripInvitation renders the email sent to a non-owner participant once the
// trip has been confirmed.
func (c *Composer) TripInvitation(trip domain.Trip, p domain.Participant) (mail.Message, error) {
	data := c.data(trip, p.Name, c.ParticipantConfirmURL(p.ID))
	return c.render("invitation", p.Email, data)
}

// TripConfirmationRequest renders the email asking the owner to confirm a
// trip they just created.
func (c *Composer) TripConfirmationRequest(trip domain.Trip, owner domain.Participant) (mail.Message, error) {
	data := c.data(trip, owner.Name, c.TripConfirmURL(trip.ID))
	return c.render("confirm_trip", owner.Email, data)
}

func (c *Composer) data(trip domain.Trip, name, link string) emailData {
	return emailData{
		Name:        name,
		Destination: trip.Destination,
		StartsAt:    FormatLongDate(trip.StartsAt, c.lang),
		EndsAt:      FormatLongDate(trip.EndsAt, c.lang),
		Link:        link,
	}
}

func (c *Composer) render(kind, to string, data emailData) (mail.Message, error) {
	var subject, body bytes.Buffer
	name := kind + "." + c.locale
	if err := subjects.ExecuteTemplate(&subject, name, data); err != nil {
		return mail.Message{}, fmt.Errorf("notify.Composer: subject %s: %w", name, err)
	}
	if err := bodies.ExecuteTemplate(&body, name, data); err != nil {
		return mail.Message{}, fmt.Errorf("notify.Composer: body %s: %w", name, err)
	}
	return mail.Message{
		To:      to,
		Subject: strings.TrimSpace(subject.String()),
		HTML:    strings.TrimSpace(body.String()),
	}, nil
}
