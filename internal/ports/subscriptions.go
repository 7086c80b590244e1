package ports

import (
	"net/http"

	"github.com/Amund211/gamenight/internal/app"
)

func MakeListSubscriptionsHandler(listSubscriptions app.ListSubscriptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subscriptions, err := listSubscriptions(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(subscriptionsToResponse(subscriptions)))
	}
}

func MakeGetSubscriptionHandler(getSubscription app.GetSubscription) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		subscription, err := getSubscription(ctx, r.PathValue("weekday"))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(subscriptionToResponse(subscription)))
	}
}

type putSubscriptionRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

func MakePutSubscriptionHandler(putSubscription app.PutSubscription) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := decodeJSON[putSubscriptionRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		subscription, err := putSubscription(ctx, r.PathValue("weekday"), request.PlayerIDs)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(subscriptionToResponse(subscription)))
	}
}

func MakeDeleteSubscriptionHandler(deleteSubscription app.DeleteSubscription) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		err := deleteSubscription(ctx, r.PathValue("weekday"))
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}
