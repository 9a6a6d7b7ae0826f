// utils/utils.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// RespondWithJSON writes any payload verbatim.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithData wraps a payload in the success envelope.
func RespondWithData(w http.ResponseWriter, code int, payload interface{}) {
	RespondWithJSON(w, code, map[string]interface{}{
		"success": true,
		"data":    payload,
	})
}

// RespondWithError writes the failure envelope. kind is the machine-readable
// error class; message the human-readable one.
func RespondWithError(w http.ResponseWriter, code int, kind string, message string) {
	RespondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"kind":    kind,
		"error":   message,
	})
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateRandomPassword(length int) string {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "fallbackpass123" // very rare fallback
	}
	return base64.URLEncoding.EncodeToString(b)[:length]
}
