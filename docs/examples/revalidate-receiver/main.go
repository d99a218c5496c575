// Balcao revalidation receiver example
//
// A minimal endpoint that accepts the signed stale-path deliveries balcao
// sends when REVALIDATE_WEBHOOK_URL is set.
//
// Usage:
//
//	export REVALIDATE_WEBHOOK_SECRET="same value as the API"
//	go run .
//
// Then point the API at it: REVALIDATE_WEBHOOK_URL=http://localhost:9000/revalidate
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

const replayWindow = 5 * time.Minute

type delivery struct {
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}

func main() {
	secret := os.Getenv("REVALIDATE_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("REVALIDATE_WEBHOOK_SECRET environment variable is required")
	}

	http.HandleFunc("POST /revalidate", revalidateHandler(secret))

	log.Println("listening on :9000")
	log.Fatal(http.ListenAndServe(":9000", nil))
}

func revalidateHandler(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		ts, err := strconv.ParseInt(r.Header.Get("X-Balcao-Timestamp"), 10, 64)
		if err != nil || !verify(secret, r.Header.Get("X-Balcao-Signature"), ts, body) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		var d delivery
		if err := json.Unmarshal(body, &d); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		// A Next.js or similar front end would purge its cache for each path here.
		for _, p := range d.Paths {
			log.Printf("stale %s (delivery %s, at %s)", p, r.Header.Get("X-Balcao-Delivery-Id"), d.At.Format(time.RFC3339))
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// verify checks HMAC-SHA256 over "{timestamp}.{body}" and the replay window.
func verify(secret, signature string, ts int64, body []byte) bool {
	if d := time.Since(time.Unix(ts, 0)); d > replayWindow || d < -replayWindow {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10) + "."))
	mac.Write(body)
	return hmac.Equal([]byte(signature), []byte(hex.EncodeToString(mac.Sum(nil))))
}
