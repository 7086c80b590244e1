package ports

import (
	"net/http"

	"github.com/Amund211/gamenight/internal/app"
	"github.com/Amund211/gamenight/internal/logging"
)

func MakeListAdminsHandler(listAdmins app.ListAdmins) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		admins, err := listAdmins(ctx)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, success(adminsToResponse(admins)))
	}
}

type addAdminRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func MakeAddAdminHandler(addAdmin app.AddAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		request, err := decodeJSON[addAdminRequest](r, w)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		admin, err := addAdmin(ctx, request.Email, request.Name)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Added admin", "email", admin.Email)

		writeJSON(ctx, w, http.StatusCreated, success(adminToResponse(admin)))
	}
}

func MakeRemoveAdminHandler(removeAdmin app.RemoveAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		email := r.PathValue("email")
		err := removeAdmin(ctx, email)
		if err != nil {
			writeError(ctx, w, err)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Removed admin", "email", email)

		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}
