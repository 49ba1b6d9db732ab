package handlers

import (
	"context"
	"net/http"

	"github.com/isdelr/bookshelf-be/internal/auth"
	"github.com/isdelr/bookshelf-be/internal/httputil"
	"github.com/isdelr/bookshelf-be/internal/models"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// currentUser fetches the identity placed by the auth middleware. A missing
// identity means the route was mounted without it.
func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("Could not retrieve user from context")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return models.User{}, false
	}
	return user, true
}

// recordEvent stores an activity event. Failures are logged; they never fail the request.
func recordEvent(ctx context.Context, events services.EventServiceProvider, eventType, level, message string, userID int64) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message, &userID); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Int64("user_id", userID).Msg("Failed to record event")
	}
}
