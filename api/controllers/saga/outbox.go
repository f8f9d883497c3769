package saga

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/sagaflow-backend/api/responses"
	"github.com/angelmondragon/sagaflow-backend/api/validators"
	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/pagination"
)

type outboxLister interface {
	FetchUnprocessed(limit int) ([]models.OutboxEvent, error)
}

type outboxEventView struct {
	ID            int64                     `json:"id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   uuid.UUID                 `json:"aggregate_id"`
	Payload       json.RawMessage           `json:"payload"`
	AttemptCount  int                       `json:"attempt_count"`
	LastError     *string                   `json:"last_error,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// Outbox lists events still waiting on the relay, oldest first.
func Outbox(repo outboxLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "outbox repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := repo.FetchUnprocessed(limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending outbox events"))
			return
		}

		views := make([]outboxEventView, len(events))
		for i, event := range events {
			views[i] = outboxEventView{
				ID:            event.ID,
				EventType:     event.EventType,
				AggregateType: event.AggregateType,
				AggregateID:   event.AggregateID,
				Payload:       event.Payload,
				AttemptCount:  event.AttemptCount,
				LastError:     event.LastError,
				CreatedAt:     event.CreatedAt,
			}
		}

		responses.WriteSuccess(w, map[string]any{"items": views})
	}
}
