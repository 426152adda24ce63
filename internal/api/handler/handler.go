// Package handler wires the HTTP and WebSocket surface. Handlers are
// methods on Handler, which carries every injected dependency.
package handler

import (
	"preloved/backend/internal/auth"
	"preloved/backend/internal/blob"
	"preloved/backend/internal/chathub"
	"preloved/backend/internal/classify"
	"preloved/backend/internal/deal"
	"preloved/backend/internal/localization"
	"preloved/backend/internal/storage"
)

type Handler struct {
	Store      storage.Storage
	Tokens     *auth.TokenService
	Rooms      *chathub.RoomHub
	Lists      *chathub.ListHub
	Notifier   *chathub.Notifier
	Deals      *deal.Coordinator
	Uploader   blob.Uploader
	Classifier classify.Classifier
	Loc        *localization.Localizer
	Lang       string
}

func New(store storage.Storage, tokens *auth.TokenService, rooms *chathub.RoomHub, lists *chathub.ListHub, notifier *chathub.Notifier, deals *deal.Coordinator, uploader blob.Uploader, classifier classify.Classifier, loc *localization.Localizer, lang string) *Handler {
	return &Handler{
		Store:      store,
		Tokens:     tokens,
		Rooms:      rooms,
		Lists:      lists,
		Notifier:   notifier,
		Deals:      deals,
		Uploader:   uploader,
		Classifier: classifier,
		Loc:        loc,
		Lang:       lang,
	}
}
