// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/uninett/connect-import-service/internal/infrastructure/dataporten"
	"github.com/uninett/connect-import-service/internal/logging"
)

// ErrorWriter renders err as the API error envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// IdentityMiddleware rejects requests without valid gatekeeper headers and
// stores the verified identity in the request context.
func IdentityMiddleware(verifier *dataporten.Verifier, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := verifier.Verify(r.Header)
			if err != nil {
				slog.WarnContext(r.Context(), "rejected request identity", logging.ErrKey, err)
				writeError(w, r, err)
				return
			}

			ctx := dataporten.WithIdentity(r.Context(), id)
			ctx = logging.AppendCtx(ctx, slog.String("user_org", id.Org))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
