package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// attachmentName builds a download filename from a deck title and ID
func attachmentName(title, deckID, ext string) string {
	safeTitle := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	safeTitle = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, safeTitle)
	if safeTitle == "" {
		return fmt.Sprintf("deck-%s.%s", deckID, ext)
	}
	return fmt.Sprintf("%s.%s", safeTitle, ext)
}
