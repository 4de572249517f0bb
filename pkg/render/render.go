// Package render writes HTTP responses as JSON, or as MessagePack for clients that ask for it.
package render

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is the media type display clients send in Accept
const ContentTypeMsgpack = "application/msgpack"

// WantsMsgpack reports whether the request prefers a MessagePack body
func WantsMsgpack(r *http.Request) bool {
	if r == nil {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, ContentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// Respond encodes data with the negotiated codec. Struct fields need msgpack tags to keep
// the same keys as their JSON form.
func Respond(w http.ResponseWriter, r *http.Request, status int, data interface{}, log zerolog.Logger) {
	if WantsMsgpack(r) {
		body, err := msgpack.Marshal(data)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode msgpack response")
			JSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to encode response"}, log)
			return
		}
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)
		if _, err := w.Write(body); err != nil {
			log.Debug().Err(err).Msg("Failed to write msgpack response")
		}
		return
	}

	JSON(w, status, data, log)
}

// JSON writes data as a JSON body
func JSON(w http.ResponseWriter, status int, data interface{}, log zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// Error writes {"error": message} with the negotiated codec
func Error(w http.ResponseWriter, r *http.Request, status int, message string, log zerolog.Logger) {
	Respond(w, r, status, map[string]string{"error": message}, log)
}

// DecodeJSON reads a JSON request body into v, rejecting unknown fields
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
