package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/boostube/internal/logger"
)

const bearerScheme = "bearer"

// exemptRead reports whether r is a read-only liveness or scrape request.
// Only GET and HEAD skip authentication; other methods on these paths do not.
func exemptRead(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return r.URL.Path == "/health" || r.URL.Path == "/metrics"
}

// keyRing holds digests of the accepted API keys.
type keyRing [][sha256.Size]byte

func newKeyRing(apiKeys []string) keyRing {
	ring := make(keyRing, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			ring = append(ring, sha256.Sum256([]byte(k)))
		}
	}
	return ring
}

// accepts compares against every key in constant time per key.
func (kr keyRing) accepts(token string) bool {
	sum := sha256.Sum256([]byte(token))
	ok := 0
	for i := range kr {
		ok |= subtle.ConstantTimeCompare(sum[:], kr[i][:])
	}
	return ok == 1
}

// bearerToken extracts the credentials of an Authorization header. The
// scheme name is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// If apiKeys is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	ring := newKeyRing(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(ring) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptRead(r) {
				next.ServeHTTP(w, r)
				return
			}

			reject := func(msg string) {
				logpkg.FromContext(r.Context()).Debug("Rejected request", zap.String("reason", msg))
				w.Header().Set("WWW-Authenticate", `Bearer realm="boostube"`)
				writeError(w, http.StatusUnauthorized, codeUnauthorized, msg)
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				reject("missing authorization header")
				return
			}
			token, ok := bearerToken(auth)
			if !ok {
				reject("authorization header must use Bearer scheme")
				return
			}
			if !ring.accepts(token) {
				reject("invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
